package collab

import (
	"errors"
	"fmt"
)

// ChangeKind discriminates the three mutation kinds a change envelope can
// carry.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangePayload carries the blocks involved in an insert or update.
type ChangePayload struct {
	Blocks []Block `json:"blocks"`
}

// Change is the atomic unit of mutation exchanged between participants. It is
// created on every local mutation and on receipt of every remote mutation
// message, and never mutated after creation.
type Change struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	ActorID   string         `json:"actorId"`
	Kind      ChangeKind     `json:"kind"`
	BlockID   string         `json:"blockId,omitempty"`
	Payload   *ChangePayload `json:"payload,omitempty"`
}

var (
	// ErrMalformedChange reports an envelope missing required fields for its
	// kind. Malformed envelopes are rejected at the boundary: not applied,
	// not relayed.
	ErrMalformedChange = errors.New("malformed change envelope")
)

// Validate checks the per-kind shape of the envelope.
func (c Change) Validate() error {
	if c.ActorID == "" {
		return fmt.Errorf("%w: missing actorId", ErrMalformedChange)
	}
	if c.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrMalformedChange)
	}
	switch c.Kind {
	case ChangeInsert, ChangeUpdate:
		if c.Payload == nil || len(c.Payload.Blocks) == 0 {
			return fmt.Errorf("%w: %s without payload blocks", ErrMalformedChange, c.Kind)
		}
		for _, b := range c.Payload.Blocks {
			if b.ID == "" {
				return fmt.Errorf("%w: payload block without id", ErrMalformedChange)
			}
		}
	case ChangeDelete:
		if c.BlockID == "" {
			return fmt.Errorf("%w: delete without blockId", ErrMalformedChange)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedChange, c.Kind)
	}
	return nil
}
