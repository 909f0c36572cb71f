// Package wire defines the payload shapes exchanged over the realtime
// channel. Field names follow the JSON casing expected by the web client.
package wire

import (
	"github.com/scribehq/scribe/internal/collab"
)

// SocketAuthPayload is the handshake auth payload sent when a socket
// connects.
type SocketAuthPayload struct {
	Token string `json:"token"`
}

// CursorPosition is a participant's cursor location in page coordinates.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// JoinDocumentPayload is sent by a client entering a document room.
type JoinDocumentPayload struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	TeamID     string `json:"teamId,omitempty"`
}

// LeaveDocumentPayload is sent by a client leaving a document room.
type LeaveDocumentPayload struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
}

// SessionUser describes one room participant in a "session-users" snapshot.
type SessionUser struct {
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Color    string          `json:"color"`
	Typing   bool            `json:"typing,omitempty"`
	Cursor   *CursorPosition `json:"cursor,omitempty"`
}

// UserJoinedPayload is broadcast to a room when a participant joins.
type UserJoinedPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Color    string `json:"color,omitempty"`
}

// UserLeftPayload is broadcast to a room when a participant leaves or its
// socket times out.
type UserLeftPayload struct {
	UserID string `json:"userId"`
}

// ChangeBlocks carries the blocks involved in an insert or update change.
type ChangeBlocks struct {
	Blocks []collab.Block `json:"blocks"`
}

// DocumentChangePayload is a block mutation, inbound from the editing client
// and relayed (same shape) to the other room members after apply/merge.
type DocumentChangePayload struct {
	DocumentID string        `json:"documentId"`
	BlockID    string        `json:"blockId,omitempty"`
	Kind       string        `json:"kind"`
	Payload    *ChangeBlocks `json:"payload,omitempty"`
	UserID     string        `json:"userId"`
	Timestamp  int64         `json:"timestamp"`
}

// CursorUpdatePayload fans a cursor position out to the room. A dropped
// update is superseded by the next one.
type CursorUpdatePayload struct {
	DocumentID string         `json:"documentId"`
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName"`
	Position   CursorPosition `json:"position"`
}

// TypingPayload fans a typing-start/typing-stop toggle out to the room.
type TypingPayload struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
}
