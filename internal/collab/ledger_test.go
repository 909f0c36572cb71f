package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ledgerChange(id string, ts int64) Change {
	return Change{ID: id, Timestamp: ts, ActorID: "u1", Kind: ChangeDelete, BlockID: "b1"}
}

func TestLedger_AdvanceWatermarkEvicts(t *testing.T) {
	l := NewLedger()
	l.Record(ledgerChange("c1", 1))
	l.Record(ledgerChange("c2", 2))
	l.Record(ledgerChange("c3", 3))

	l.AdvanceWatermark(2)

	pending := l.PendingSince(0)
	require.Len(t, pending, 1)
	require.Equal(t, "c3", pending[0].ID)
	require.Equal(t, int64(2), l.Watermark())
}

func TestLedger_PendingSinceFiltersStrictlyGreater(t *testing.T) {
	l := NewLedger()
	l.Record(ledgerChange("c1", 10))
	l.Record(ledgerChange("c2", 20))

	require.Len(t, l.PendingSince(10), 1)
	require.Len(t, l.PendingSince(9), 2)
	require.Empty(t, l.PendingSince(20))
}

func TestLedger_NoDeduplicationByBlock(t *testing.T) {
	l := NewLedger()
	l.Record(ledgerChange("c1", 1))
	l.Record(ledgerChange("c2", 2))
	require.Equal(t, 2, l.Len())
}

func TestLedger_WatermarkNeverRegresses(t *testing.T) {
	l := NewLedger()
	l.Record(ledgerChange("c1", 5))
	l.AdvanceWatermark(10)
	l.AdvanceWatermark(3)
	require.Equal(t, int64(10), l.Watermark())
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger()
	l.Record(ledgerChange("c1", 1))
	l.AdvanceWatermark(1)
	l.Reset()
	require.Zero(t, l.Watermark())
	require.Zero(t, l.Len())
}

func TestLedger_PreservesInsertionOrder(t *testing.T) {
	l := NewLedger()
	// Insertion order wins even when timestamps interleave.
	l.Record(ledgerChange("c2", 20))
	l.Record(ledgerChange("c1", 10))

	pending := l.PendingSince(0)
	require.Equal(t, "c2", pending[0].ID)
	require.Equal(t, "c1", pending[1].ID)
}
