package handlers

import (
	"github.com/scribehq/scribe/internal/wire"
)

// LeaveDocument removes the caller from a document room and broadcasts
// "user-left" to the remaining members. Leaving a room the user never joined
// is a no-op.
func LeaveDocument(deps Deps, auth AuthContext, req wire.LeaveDocumentPayload) EventResult {
	if req.DocumentID == "" {
		return NewEventResult(nil)
	}

	left := deps.Rooms().Leave(req.DocumentID, auth.UserID())
	if !left {
		return NewEventResult(nil)
	}

	result := NewEventResult([]Emission{
		newRoomBroadcast(req.DocumentID, "user-left", wire.UserLeftPayload{
			UserID: auth.UserID(),
		}),
	})
	result.leftDocumentID = req.DocumentID
	return result
}

// DisconnectEffects applies the presence leave transition for a socket that
// disconnected, gracefully or not. The transport's liveness timeout is the
// only signal for ungraceful exits; no leave-document message can be assumed.
//
// The leave is socket-aware: a ping timeout for a stale socket can fire well
// after the user has rejoined on a fresh one, and must not evict them.
func DisconnectEffects(deps Deps, auth AuthContext, documentID string) EventResult {
	if documentID == "" {
		return NewEventResult(nil)
	}
	if !deps.Rooms().LeaveSocket(documentID, auth.UserID(), auth.SocketID()) {
		return NewEventResult(nil)
	}

	result := NewEventResult([]Emission{
		newRoomBroadcast(documentID, "user-left", wire.UserLeftPayload{
			UserID: auth.UserID(),
		}),
	})
	result.leftDocumentID = documentID
	return result
}
