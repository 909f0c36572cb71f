package collab

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EditorSession is the two-phase optimistic editing flow for one participant
// on one document: local edits are applied immediately and recorded in the
// pending ledger, remote changes are reconciled through the conflict
// detector and merge resolver, and authority acknowledgments advance the
// ledger watermark. It is transport-agnostic.
type EditorSession struct {
	actorID string
	now     func() time.Time
	newID   func() string

	mu     sync.Mutex
	blocks []Block
	ledger *Ledger
}

// NewEditorSession creates a session over an initial block list. now and
// newID may be nil, in which case wall-clock time and random uuids are used.
func NewEditorSession(actorID string, initial []Block, now func() time.Time, newID func() string) *EditorSession {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	blocks := copyBlocks(initial)
	SortBlocks(blocks)
	return &EditorSession{
		actorID: actorID,
		now:     now,
		newID:   newID,
		blocks:  blocks,
		ledger:  NewLedger(),
	}
}

// Edit converts a local mutation into a change envelope, applies it
// optimistically, records it in the pending ledger, and returns the envelope
// for transmission to the synchronization authority.
func (s *EditorSession) Edit(kind ChangeKind, blockID string, payload *ChangePayload) (Change, error) {
	change := Change{
		ID:        s.newID(),
		Timestamp: s.now().UnixMilli(),
		ActorID:   s.actorID,
		Kind:      kind,
		BlockID:   blockID,
		Payload:   payload,
	}
	if err := change.Validate(); err != nil {
		return Change{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = Apply(change, s.blocks)
	s.ledger.Record(change)
	return change, nil
}

// IngestRemote reconciles an incoming remote change envelope into the local
// block list. Non-conflicting changes are applied directly; conflicts go
// through the merge resolver, and an unresolved merge falls back to applying
// the remote change unconditionally (remote-wins).
func (s *EditorSession) IngestRemote(remote Change) error {
	if err := remote.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conflicts := Detect(remote, s.blocks)
	if len(conflicts) == 0 {
		s.blocks = Apply(remote, s.blocks)
		return nil
	}

	res := Resolve(remote, s.blocks, conflicts)
	if res.Resolved {
		s.blocks = res.Merged
		return nil
	}
	s.blocks = Apply(remote, s.blocks)
	return nil
}

// Acknowledge records that the authority has acknowledged all local changes
// up to and including the given timestamp.
func (s *EditorSession) Acknowledge(timestamp int64) {
	s.ledger.AdvanceWatermark(timestamp)
}

// PendingChanges returns the locally originated changes still awaiting
// acknowledgment, in origination order. Used for replay on reconnect.
func (s *EditorSession) PendingChanges() []Change {
	return s.ledger.PendingSince(s.ledger.Watermark())
}

// Reset abandons local pending state and replaces the block list, e.g. after
// an explicit resync from the authority.
func (s *EditorSession) Reset(blocks []Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = copyBlocks(blocks)
	SortBlocks(s.blocks)
	s.ledger.Reset()
}

// Blocks returns a copy of the current block list in canonical order.
func (s *EditorSession) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBlocks(s.blocks)
}
