package handlers

import (
	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/wire"
	"github.com/scribehq/scribe/pkg/logger"
)

// ChangeInstruction asks the transport adapter to enqueue a validated change
// envelope on the document's serialized apply/merge pipeline.
type ChangeInstruction struct {
	documentID   string
	change       collab.Change
	skipSocketID string
}

// DocumentID returns the target document.
func (c *ChangeInstruction) DocumentID() string { return c.documentID }

// Change returns the change envelope built from the inbound message.
func (c *ChangeInstruction) Change() collab.Change { return c.change }

// SkipSocketID returns the originating socket, excluded from the relay.
func (c *ChangeInstruction) SkipSocketID() string { return c.skipSocketID }

// ChangeIngest converts an inbound document-change message into a change
// envelope. Malformed messages are rejected here at the boundary: nil is
// returned and nothing is applied or relayed.
func ChangeIngest(deps Deps, auth AuthContext, req wire.DocumentChangePayload) *ChangeInstruction {
	if req.DocumentID == "" {
		logger.Warnf("document-change without documentId from user %s", auth.UserID())
		return nil
	}

	change := collab.Change{
		ID:        deps.NewID(),
		Timestamp: req.Timestamp,
		ActorID:   auth.UserID(),
		Kind:      collab.ChangeKind(req.Kind),
		BlockID:   req.BlockID,
	}
	if req.Payload != nil {
		change.Payload = &collab.ChangePayload{Blocks: req.Payload.Blocks}
	}

	if err := change.Validate(); err != nil {
		logger.Warnf("rejecting document-change from user %s: %v", auth.UserID(), err)
		return nil
	}

	return &ChangeInstruction{
		documentID:   req.DocumentID,
		change:       change,
		skipSocketID: auth.SocketID(),
	}
}
