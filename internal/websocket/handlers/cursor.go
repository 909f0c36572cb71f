package handlers

import (
	"github.com/scribehq/scribe/internal/wire"
)

// CursorUpdate fans a participant's cursor position out to the rest of the
// room, tagged with the sender. Purely ephemeral: nothing is persisted and a
// lost update is superseded by the next one.
func CursorUpdate(deps Deps, auth AuthContext, req wire.CursorUpdatePayload) EventResult {
	if req.DocumentID == "" {
		return NewEventResult(nil)
	}
	if !deps.Rooms().SetCursor(req.DocumentID, auth.UserID(), req.Position) {
		return NewEventResult(nil)
	}

	return NewEventResult([]Emission{
		newRoomBroadcast(req.DocumentID, "cursor-update", wire.CursorUpdatePayload{
			DocumentID: req.DocumentID,
			UserID:     auth.UserID(),
			UserName:   auth.UserName(),
			Position:   req.Position,
		}),
	})
}
