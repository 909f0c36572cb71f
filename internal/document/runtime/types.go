package runtime

import (
	"context"

	"github.com/scribehq/scribe/internal/collab"
)

// RoomEmitter delivers document events to connected clients.
type RoomEmitter interface {
	EmitToDocument(documentID, event string, payload any, skipSocketID string)
}

// Store abstracts block persistence for the runtime.
type Store interface {
	LoadBlocks(ctx context.Context, documentID string) ([]collab.Block, error)
	SaveBlocks(ctx context.Context, documentID string, blocks []collab.Block) error
	MarkDocumentActive(ctx context.Context, documentID string) error
}

// Publisher forwards applied changes to peer server instances. Implementations
// must not echo a change back to the instance that published it.
type Publisher interface {
	PublishChange(ctx context.Context, documentID string, change collab.Change) error
}

type changeEvent struct {
	ctx          context.Context
	documentID   string
	change       collab.Change
	skipSocketID string
	relayed      bool
}
