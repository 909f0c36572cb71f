package handlers

import (
	"github.com/scribehq/scribe/internal/presence"
	"github.com/scribehq/scribe/internal/wire"
)

// JoinDocument moves the caller into a document room. The caller is sent the
// "session-users" snapshot of already-joined participants; everyone else in
// the room gets a "user-joined" broadcast (skipped on rejoin so a reconnect
// does not announce the user twice).
func JoinDocument(deps Deps, auth AuthContext, req wire.JoinDocumentPayload) EventResult {
	if req.DocumentID == "" {
		return NewEventResult(nil)
	}

	userName := req.UserName
	if userName == "" {
		userName = auth.UserName()
	}

	existing, rejoined := deps.Rooms().Join(req.DocumentID, presence.Participant{
		UserID:   auth.UserID(),
		UserName: userName,
		Color:    presence.ColorFor(auth.UserID()),
		TeamID:   req.TeamID,
		SocketID: auth.SocketID(),
		JoinedAt: deps.Now(),
	})

	snapshot := make([]wire.SessionUser, 0, len(existing))
	for _, p := range existing {
		snapshot = append(snapshot, wire.SessionUser{
			UserID:   p.UserID,
			UserName: p.UserName,
			Color:    p.Color,
			Typing:   p.Typing,
			Cursor:   p.Cursor,
		})
	}

	emissions := []Emission{
		newCallerReply("session-users", snapshot),
	}
	if !rejoined {
		emissions = append(emissions, newRoomBroadcast(req.DocumentID, "user-joined", wire.UserJoinedPayload{
			UserID:   auth.UserID(),
			UserName: userName,
			Color:    presence.ColorFor(auth.UserID()),
		}))
	}

	result := NewEventResult(emissions)
	result.joinedDocumentID = req.DocumentID
	return result
}
