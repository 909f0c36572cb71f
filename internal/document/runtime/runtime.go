package runtime

import (
	"context"
	"sync"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/pkg/logger"
)

// Manager owns per-document runtimes and provides serialized entrypoints.
type Manager struct {
	store     Store
	emitter   RoomEmitter
	publisher Publisher

	mu       sync.Mutex
	runtimes map[string]*documentRuntime
}

// NewManager creates a new per-document runtime manager. publisher may be nil
// when the server runs as a single instance.
func NewManager(store Store, emitter RoomEmitter, publisher Publisher) *Manager {
	return &Manager{
		store:     store,
		emitter:   emitter,
		publisher: publisher,
		runtimes:  make(map[string]*documentRuntime),
	}
}

// EnqueueChange schedules a change for a document.
//
// The runtime serializes all applies for a given document id so that every
// change sees the state left behind by the previous one, regardless of how
// many Socket.IO callbacks race to submit.
func (m *Manager) EnqueueChange(ctx context.Context, documentID string, change collab.Change, skipSocketID string) {
	if documentID == "" {
		return
	}
	rt := m.getOrCreate(documentID)
	rt.enqueue(changeEvent{
		ctx:          ctx,
		documentID:   documentID,
		change:       change,
		skipSocketID: skipSocketID,
	})
}

// EnqueueRelayedChange schedules a change received from a peer instance. It is
// applied like a local one but never re-published.
func (m *Manager) EnqueueRelayedChange(ctx context.Context, documentID string, change collab.Change) {
	if documentID == "" {
		return
	}
	rt := m.getOrCreate(documentID)
	rt.enqueue(changeEvent{
		ctx:        ctx,
		documentID: documentID,
		change:     change,
		relayed:    true,
	})
}

// Blocks returns the current in-memory block state of a document, loading it
// from the store if the runtime has not seen the document yet.
func (m *Manager) Blocks(ctx context.Context, documentID string) ([]collab.Block, error) {
	rt := m.getOrCreate(documentID)
	return rt.snapshot(ctx)
}

func (m *Manager) getOrCreate(documentID string) *documentRuntime {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.runtimes[documentID]; ok {
		return rt
	}
	rt := newDocumentRuntime(m.store, m.emitter, m.publisher, documentID)
	m.runtimes[documentID] = rt
	return rt
}

type documentRuntime struct {
	store     Store
	emitter   RoomEmitter
	publisher Publisher

	documentID string
	events     chan any

	startOnce sync.Once

	stateMu sync.Mutex
	loaded  bool
	blocks  []collab.Block
}

func newDocumentRuntime(store Store, emitter RoomEmitter, publisher Publisher, documentID string) *documentRuntime {
	return &documentRuntime{
		store:      store,
		emitter:    emitter,
		publisher:  publisher,
		documentID: documentID,
		events:     make(chan any, 256),
	}
}

func (r *documentRuntime) enqueue(evt any) {
	r.startOnce.Do(func() { go r.loop() })
	select {
	case r.events <- evt:
	default:
		// Avoid blocking Socket.IO callbacks indefinitely; drop under overload.
		logger.Warnf("[runtime] document %s queue full; dropping event %T", r.documentID, evt)
	}
}

func (r *documentRuntime) loop() {
	for evt := range r.events {
		switch e := evt.(type) {
		case changeEvent:
			r.handleChange(e)
		default:
			logger.Warnf("[runtime] document %s: unknown event %T", r.documentID, evt)
		}
	}
}

func (r *documentRuntime) snapshot(ctx context.Context) ([]collab.Block, error) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if err := r.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]collab.Block, len(r.blocks))
	copy(out, r.blocks)
	return out, nil
}

func (r *documentRuntime) ensureLoadedLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	blocks, err := r.store.LoadBlocks(ctx, r.documentID)
	if err != nil {
		return err
	}
	r.blocks = blocks
	r.loaded = true
	return nil
}
