package collab

import (
	"github.com/brunoga/deep"
)

// Apply applies a non-conflicting (or already resolved) change to a block
// list and returns the new list. It is a pure function: the input list is
// never mutated, so callers can keep previous lists as immutable history.
func Apply(change Change, blocks []Block) []Block {
	next, err := deep.Copy(blocks)
	if err != nil {
		// Blocks are plain data; a copy failure here would mean a payload
		// carrying an unsupported property value. Fall back to a shallow
		// copy of the list so apply still cannot reorder the caller's slice.
		next = copyBlocks(blocks)
	}

	switch change.Kind {
	case ChangeInsert:
		if change.Payload == nil {
			return next
		}
		return mergeInsert(change.Payload.Blocks, next)
	case ChangeUpdate:
		if change.Payload == nil {
			return next
		}
		return mergeUpdate(change.Payload.Blocks, next)
	case ChangeDelete:
		return deleteBlock(next, change.BlockID)
	}
	return next
}
