// Package presence tracks per-document room membership and the ephemeral
// cursor/typing state of each participant.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/scribehq/scribe/internal/wire"
)

// Participant is one user's ephemeral state inside a document room. It is
// created on join, updated by cursor/typing events, and destroyed on leave or
// disconnect.
type Participant struct {
	UserID   string
	UserName string
	Color    string
	TeamID   string
	SocketID string
	Cursor   *wire.CursorPosition
	Typing   bool
	JoinedAt time.Time
}

// Manager owns room state for all open documents: an explicit mapping from
// document id to the set of joined participants. It is constructed once per
// process and injected into the socket layer; there is no ambient global.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Participant // documentID -> userID
}

// NewManager creates an empty room registry.
func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]map[string]*Participant),
	}
}

// Join transitions a participant into a document room. It returns the
// participants that were already joined (the "session-users" snapshot owed to
// the joining client) and whether this user was already present, in which
// case the caller must not broadcast another user-joined event.
func (m *Manager) Join(documentID string, p Participant) (existing []Participant, rejoined bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.rooms[documentID]
	if room == nil {
		room = make(map[string]*Participant)
		m.rooms[documentID] = room
	}

	for id, other := range room {
		if id == p.UserID {
			continue
		}
		existing = append(existing, *other)
	}
	sortParticipants(existing)

	if prev, ok := room[p.UserID]; ok {
		// Same user reconnecting or opening a second tab: refresh the
		// socket binding but keep the original join time.
		p.JoinedAt = prev.JoinedAt
		room[p.UserID] = &p
		return existing, true
	}

	room[p.UserID] = &p
	return existing, false
}

// Leave removes a participant from a room and reports whether they were
// present. Empty rooms are dropped.
func (m *Manager) Leave(documentID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.rooms[documentID]
	if room == nil {
		return false
	}
	if _, ok := room[userID]; !ok {
		return false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(m.rooms, documentID)
	}
	return true
}

// LeaveSocket removes a participant only if they are still bound to the given
// socket. A disconnect for a stale socket (the user reconnected and Join
// refreshed the binding) must not evict the live participant, so it reports
// false and leaves the room untouched.
func (m *Manager) LeaveSocket(documentID, userID, socketID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.rooms[documentID]
	if room == nil {
		return false
	}
	p, ok := room[userID]
	if !ok || p.SocketID != socketID {
		return false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(m.rooms, documentID)
	}
	return true
}

// SetCursor updates a participant's cursor position. Returns false when the
// user is not joined to the document.
func (m *Manager) SetCursor(documentID, userID string, pos wire.CursorPosition) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(documentID, userID)
	if p == nil {
		return false
	}
	p.Cursor = &pos
	return true
}

// SetTyping toggles a participant's typing flag. Last write wins per user.
func (m *Manager) SetTyping(documentID, userID string, typing bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(documentID, userID)
	if p == nil {
		return false
	}
	p.Typing = typing
	return true
}

// Participants returns the current members of a document room, ordered by
// join time.
func (m *Manager) Participants(documentID string) []Participant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room := m.rooms[documentID]
	out := make([]Participant, 0, len(room))
	for _, p := range room {
		out = append(out, *p)
	}
	sortParticipants(out)
	return out
}

// RoomCount returns the number of open document rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// DocumentIDs returns the ids of all documents with at least one participant.
func (m *Manager) DocumentIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) lookup(documentID, userID string) *Participant {
	room := m.rooms[documentID]
	if room == nil {
		return nil
	}
	return room[userID]
}

func sortParticipants(ps []Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].JoinedAt.Equal(ps[j].JoinedAt) {
			return ps[i].JoinedAt.Before(ps[j].JoinedAt)
		}
		return ps[i].UserID < ps[j].UserID
	})
}
