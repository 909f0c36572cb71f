package collab

import "sync"

// Ledger tracks locally originated changes not yet acknowledged by the
// synchronization authority. It is owned exclusively by one session and is
// append-only; entries are pruned as the acknowledgment watermark advances.
type Ledger struct {
	mu        sync.Mutex
	entries   []Change
	watermark int64
}

// NewLedger creates an empty pending-change ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends a change. There is no deduplication by block id: two changes
// to the same block are both recorded.
func (l *Ledger) Record(change Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, change)
}

// PendingSince returns all entries with a timestamp strictly greater than the
// given watermark, in insertion order. Used for replay to a newly
// (re)connected synchronization authority.
func (l *Ledger) PendingSince(watermark int64) []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Change, 0, len(l.entries))
	for _, c := range l.entries {
		if c.Timestamp > watermark {
			out = append(out, c)
		}
	}
	return out
}

// AdvanceWatermark moves the acknowledgment watermark forward and evicts all
// entries at or below it. A timestamp behind the current watermark is
// ignored; the watermark never regresses.
func (l *Ledger) AdvanceWatermark(timestamp int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if timestamp <= l.watermark {
		return
	}
	l.watermark = timestamp
	kept := l.entries[:0]
	for _, c := range l.entries {
		if c.Timestamp > timestamp {
			kept = append(kept, c)
		}
	}
	l.entries = kept
}

// Watermark returns the current acknowledgment watermark.
func (l *Ledger) Watermark() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.watermark
}

// Len returns the number of unacknowledged entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset clears the ledger and watermark. Used when a session is abandoned or
// an explicit resync is requested.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.watermark = 0
}
