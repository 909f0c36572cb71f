package handlers

import (
	"github.com/scribehq/scribe/internal/wire"
)

// TypingStart marks the caller as typing and notifies the room.
func TypingStart(deps Deps, auth AuthContext, req wire.TypingPayload) EventResult {
	return typingToggle(deps, auth, req, true, "typing-start")
}

// TypingStop clears the caller's typing flag and notifies the room.
func TypingStop(deps Deps, auth AuthContext, req wire.TypingPayload) EventResult {
	return typingToggle(deps, auth, req, false, "typing-stop")
}

func typingToggle(deps Deps, auth AuthContext, req wire.TypingPayload, typing bool, event string) EventResult {
	if req.DocumentID == "" {
		return NewEventResult(nil)
	}
	if !deps.Rooms().SetTyping(req.DocumentID, auth.UserID(), typing) {
		return NewEventResult(nil)
	}

	return NewEventResult([]Emission{
		newRoomBroadcast(req.DocumentID, event, wire.TypingPayload{
			DocumentID: req.DocumentID,
			UserID:     auth.UserID(),
			UserName:   auth.UserName(),
		}),
	})
}
