package handlers

import (
	"time"

	"github.com/scribehq/scribe/internal/presence"
	"github.com/scribehq/scribe/internal/wire"
)

// Rooms is the subset of room operations used by socket handlers.
type Rooms interface {
	Join(documentID string, p presence.Participant) (existing []presence.Participant, rejoined bool)
	Leave(documentID, userID string) bool
	LeaveSocket(documentID, userID, socketID string) bool
	SetCursor(documentID, userID string, pos wire.CursorPosition) bool
	SetTyping(documentID, userID string, typing bool) bool
}

// Deps holds the narrow dependencies required by socket handlers.
type Deps struct {
	rooms Rooms
	now   func() time.Time
	newID func() string
}

// NewDeps builds a dependency bundle for handler calls.
func NewDeps(rooms Rooms, now func() time.Time, newID func() string) Deps {
	return Deps{
		rooms: rooms,
		now:   now,
		newID: newID,
	}
}

func (d Deps) Rooms() Rooms { return d.rooms }

func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d Deps) NewID() string {
	if d.newID != nil {
		return d.newID()
	}
	return ""
}
