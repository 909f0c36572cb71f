package runtime

import (
	"context"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/wire"
	"github.com/scribehq/scribe/pkg/logger"
)

func (r *documentRuntime) handleChange(e changeEvent) {
	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.change.Validate(); err != nil {
		logger.Warnf("[runtime] document %s: dropping invalid change: %v", r.documentID, err)
		return
	}

	r.stateMu.Lock()
	if err := r.ensureLoadedLocked(ctx); err != nil {
		r.stateMu.Unlock()
		logger.Errorf("[runtime] document %s: load error: %v", r.documentID, err)
		return
	}

	next := r.merge(e.change, r.blocks)
	r.blocks = next
	r.stateMu.Unlock()

	if err := r.store.SaveBlocks(ctx, r.documentID, next); err != nil {
		// Persistence lag must not stall the live session; the next save
		// carries the full snapshot anyway.
		logger.Errorf("[runtime] document %s: save error: %v", r.documentID, err)
	}
	_ = r.store.MarkDocumentActive(ctx, r.documentID)

	r.emitter.EmitToDocument(r.documentID, "document-change", changeToWire(r.documentID, e.change), e.skipSocketID)

	if !e.relayed && r.publisher != nil {
		if err := r.publisher.PublishChange(ctx, r.documentID, e.change); err != nil {
			logger.Errorf("[runtime] document %s: relay publish error: %v", r.documentID, err)
		}
	}
}

// merge folds one change into the document state. Conflicting blocks go
// through the resolver; if resolution fails the change is applied as-is,
// letting the remote writer win wholesale.
func (r *documentRuntime) merge(change collab.Change, blocks []collab.Block) []collab.Block {
	conflicts := collab.Detect(change, blocks)
	if len(conflicts) == 0 {
		return collab.Apply(change, blocks)
	}

	res := collab.Resolve(change, blocks, conflicts)
	if res.Resolved {
		return res.Merged
	}

	logger.Warnf("[runtime] document %s: merge of change %s failed for %d block(s); remote writer wins",
		r.documentID, change.ID, len(res.Unresolved))
	return collab.Apply(change, blocks)
}

func changeToWire(documentID string, change collab.Change) wire.DocumentChangePayload {
	out := wire.DocumentChangePayload{
		DocumentID: documentID,
		BlockID:    change.BlockID,
		Kind:       string(change.Kind),
		UserID:     change.ActorID,
		Timestamp:  change.Timestamp,
	}
	if change.Payload != nil {
		out.Payload = &wire.ChangeBlocks{Blocks: change.Payload.Blocks}
	}
	return out
}
