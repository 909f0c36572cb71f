package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/wire"
)

type fakeStore struct {
	mu     sync.Mutex
	blocks map[string][]collab.Block
	saves  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{blocks: make(map[string][]collab.Block)}
}

func (s *fakeStore) LoadBlocks(_ context.Context, documentID string) ([]collab.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks[documentID], nil
}

func (s *fakeStore) SaveBlocks(_ context.Context, documentID string, blocks []collab.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[documentID] = blocks
	s.saves++
	return nil
}

func (s *fakeStore) MarkDocumentActive(_ context.Context, _ string) error { return nil }

type fakeEmitter struct {
	mu      sync.Mutex
	changes []wire.DocumentChangePayload
	skips   []string
}

func (e *fakeEmitter) EmitToDocument(_ string, _ string, payload any, skipSocketID string) {
	ev, ok := payload.(wire.DocumentChangePayload)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changes = append(e.changes, ev)
	e.skips = append(e.skips, skipSocketID)
}

func (e *fakeEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.changes)
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []collab.Change
}

func (p *fakePublisher) PublishChange(_ context.Context, _ string, change collab.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func insertChange(id, blockID string, ts int64, order float64) collab.Change {
	return collab.Change{
		ID:        id,
		Timestamp: ts,
		ActorID:   "u1",
		Kind:      collab.ChangeInsert,
		Payload: &collab.ChangePayload{Blocks: []collab.Block{
			{ID: blockID, Type: collab.BlockParagraph, Order: order},
		}},
	}
}

func TestManager_EnqueueChange_SerializesPerDocument(t *testing.T) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	mgr := NewManager(store, emitter, nil)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			mgr.EnqueueChange(context.Background(), "doc-1",
				insertChange(fmt.Sprintf("c%d", i), fmt.Sprintf("b%d", i), int64(i+1), float64(i)), "")
		}(i)
	}
	wg.Wait()

	waitFor(t, func() bool { return emitter.count() == n })

	blocks, err := mgr.Blocks(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(blocks) != n {
		t.Fatalf("expected %d blocks, got %d", n, len(blocks))
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i-1].Order > blocks[i].Order {
			t.Fatalf("blocks out of order at %d: %v > %v", i, blocks[i-1].Order, blocks[i].Order)
		}
	}
}

func TestManager_ChangeIsEmittedWithOriginSkipped(t *testing.T) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	mgr := NewManager(store, emitter, nil)

	mgr.EnqueueChange(context.Background(), "doc-1", insertChange("c1", "b1", 1, 0), "sock-origin")
	waitFor(t, func() bool { return emitter.count() == 1 })

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if emitter.skips[0] != "sock-origin" {
		t.Fatalf("expected origin socket to be skipped, got %q", emitter.skips[0])
	}
	if emitter.changes[0].Kind != "insert" || emitter.changes[0].UserID != "u1" {
		t.Fatalf("unexpected relayed change: %+v", emitter.changes[0])
	}
}

func TestManager_ConflictingUpdateMergesInsteadOfOverwriting(t *testing.T) {
	store := newFakeStore()
	store.blocks["doc-1"] = []collab.Block{{
		ID:      "b1",
		Type:    collab.BlockParagraph,
		Content: "local",
		Properties: collab.Properties{
			"lastModified": int64(200),
			"bold":         true,
		},
	}}
	emitter := &fakeEmitter{}
	mgr := NewManager(store, emitter, nil)

	mgr.EnqueueChange(context.Background(), "doc-1", collab.Change{
		ID:        "c1",
		Timestamp: 100,
		ActorID:   "u2",
		Kind:      collab.ChangeUpdate,
		BlockID:   "b1",
		Payload: &collab.ChangePayload{Blocks: []collab.Block{{
			ID:      "b1",
			Content: "remote",
			Properties: collab.Properties{
				"lastModified": int64(100),
				"italic":       true,
			},
		}}},
	}, "")

	waitFor(t, func() bool { return emitter.count() == 1 })

	blocks, err := mgr.Blocks(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Content != "remote" {
		t.Fatalf("remote content must win, got %q", blocks[0].Content)
	}
	if blocks[0].Properties["bold"] != true || blocks[0].Properties["italic"] != true {
		t.Fatalf("properties must shallow-merge, got %+v", blocks[0].Properties)
	}
	if blocks[0].LastModified() != 200 {
		t.Fatalf("lastModified must keep the max, got %d", blocks[0].LastModified())
	}
}

func TestManager_InvalidChangeIsDropped(t *testing.T) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	mgr := NewManager(store, emitter, nil)

	mgr.EnqueueChange(context.Background(), "doc-1", collab.Change{
		ID:      "c1",
		ActorID: "u1",
		Kind:    collab.ChangeKind("replace"),
	}, "")
	mgr.EnqueueChange(context.Background(), "doc-1", insertChange("c2", "b1", 1, 0), "")

	waitFor(t, func() bool { return emitter.count() == 1 })

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saves != 1 {
		t.Fatalf("invalid change must not be persisted, saves=%d", store.saves)
	}
}

func TestManager_LocalChangePublishedRelayedIsNot(t *testing.T) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	pub := &fakePublisher{}
	mgr := NewManager(store, emitter, pub)

	mgr.EnqueueChange(context.Background(), "doc-1", insertChange("c1", "b1", 1, 0), "")
	mgr.EnqueueRelayedChange(context.Background(), "doc-1", insertChange("c2", "b2", 2, 1))

	waitFor(t, func() bool { return emitter.count() == 2 })

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.changes) != 1 || pub.changes[0].ID != "c1" {
		t.Fatalf("only the local change should be published, got %+v", pub.changes)
	}
}
