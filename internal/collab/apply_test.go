package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApply_NeverMutatesInput(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Content: "A", Order: 0, Properties: Properties{PropLastModified: int64(1)}},
		{ID: "b2", Content: "B", Order: 1},
	}
	snapshot := []Block{
		{ID: "b1", Content: "A", Order: 0, Properties: Properties{PropLastModified: int64(1)}},
		{ID: "b2", Content: "B", Order: 1},
	}

	change := Change{
		Timestamp: 10,
		ActorID:   "u1",
		Kind:      ChangeUpdate,
		BlockID:   "b1",
		Payload: &ChangePayload{Blocks: []Block{{
			ID:         "b1",
			Content:    "A2",
			Properties: Properties{PropLastModified: int64(10)},
		}}},
	}

	next := Apply(change, blocks)
	require.Equal(t, "A2", next[0].Content)
	require.Equal(t, snapshot, blocks, "input list must stay untouched")
}

func TestApply_DeleteRemovesMatchingBlock(t *testing.T) {
	blocks := []Block{{ID: "b1"}, {ID: "b2"}}
	change := Change{Timestamp: 1, ActorID: "u1", Kind: ChangeDelete, BlockID: "b1"}

	next := Apply(change, blocks)
	require.Len(t, next, 1)
	require.Equal(t, "b2", next[0].ID)

	// Deleting again is a no-op.
	again := Apply(change, next)
	require.Equal(t, next, again)
}

func TestApply_DeleteUnknownBlockIsNoop(t *testing.T) {
	blocks := []Block{{ID: "b2"}}
	change := Change{Timestamp: 1, ActorID: "u1", Kind: ChangeDelete, BlockID: "nope"}
	require.Equal(t, blocks, Apply(change, blocks))
}

func TestApply_InsertKeepsCanonicalOrder(t *testing.T) {
	blocks := []Block{{ID: "b1", Order: 0}}
	change := Change{
		Timestamp: 1,
		ActorID:   "u1",
		Kind:      ChangeInsert,
		Payload:   &ChangePayload{Blocks: []Block{{ID: "b2", Order: 5}}},
	}

	next := Apply(change, blocks)
	require.Len(t, next, 2)
	require.Equal(t, "b1", next[0].ID)
	require.Equal(t, "b2", next[1].ID)
}

func TestApply_NilPayloadLeavesListUnchanged(t *testing.T) {
	blocks := []Block{{ID: "b1"}}
	change := Change{Timestamp: 1, ActorID: "u1", Kind: ChangeUpdate, BlockID: "b1"}
	require.Equal(t, blocks, Apply(change, blocks))
}
