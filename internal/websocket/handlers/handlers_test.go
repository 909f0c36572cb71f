package handlers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/presence"
	"github.com/scribehq/scribe/internal/wire"
)

func testDeps(t *testing.T) (Deps, *presence.Manager) {
	t.Helper()
	rooms := presence.NewManager()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	deps := NewDeps(rooms,
		func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	)
	return deps, rooms
}

func TestJoinDocumentFirstJoin(t *testing.T) {
	deps, _ := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	result := JoinDocument(deps, auth, wire.JoinDocumentPayload{
		DocumentID: "doc-1",
		UserName:   "Alice",
	})

	require.Equal(t, "doc-1", result.JoinedDocumentID())
	require.Len(t, result.Emissions(), 2)

	reply := result.Emissions()[0]
	assert.True(t, reply.IsCaller())
	assert.Equal(t, "session-users", reply.Event())
	assert.Empty(t, reply.Payload().([]wire.SessionUser))

	broadcast := result.Emissions()[1]
	assert.True(t, broadcast.IsRoom())
	assert.Equal(t, "doc-1", broadcast.DocumentID())
	assert.Equal(t, "user-joined", broadcast.Event())
	assert.True(t, broadcast.SkipSelf())

	joined := broadcast.Payload().(wire.UserJoinedPayload)
	assert.Equal(t, "user-a", joined.UserID)
	assert.Equal(t, "Alice", joined.UserName)
	assert.NotEmpty(t, joined.Color)
}

func TestJoinDocumentSnapshotExcludesJoiner(t *testing.T) {
	deps, _ := testDeps(t)

	JoinDocument(deps, NewAuthContext("user-a", "Alice", "sock-1"), wire.JoinDocumentPayload{DocumentID: "doc-1"})
	JoinDocument(deps, NewAuthContext("user-b", "Bob", "sock-2"), wire.JoinDocumentPayload{DocumentID: "doc-1"})

	result := JoinDocument(deps, NewAuthContext("user-c", "Cara", "sock-3"), wire.JoinDocumentPayload{DocumentID: "doc-1"})

	snapshot := result.Emissions()[0].Payload().([]wire.SessionUser)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "user-a", snapshot[0].UserID)
	assert.Equal(t, "user-b", snapshot[1].UserID)
}

func TestJoinDocumentRejoinSuppressesBroadcast(t *testing.T) {
	deps, _ := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	JoinDocument(deps, auth, wire.JoinDocumentPayload{DocumentID: "doc-1"})

	// Reconnect with a fresh socket: the caller still gets the snapshot but
	// the room must not see a second user-joined.
	rejoin := JoinDocument(deps, NewAuthContext("user-a", "Alice", "sock-9"), wire.JoinDocumentPayload{DocumentID: "doc-1"})

	require.Len(t, rejoin.Emissions(), 1)
	assert.True(t, rejoin.Emissions()[0].IsCaller())
	assert.Equal(t, "doc-1", rejoin.JoinedDocumentID())
}

func TestJoinDocumentWithoutDocumentID(t *testing.T) {
	deps, rooms := testDeps(t)

	result := JoinDocument(deps, NewAuthContext("user-a", "Alice", "sock-1"), wire.JoinDocumentPayload{})

	assert.Empty(t, result.JoinedDocumentID())
	assert.Empty(t, result.Emissions())
	assert.Zero(t, rooms.RoomCount())
}

func TestLeaveDocument(t *testing.T) {
	deps, rooms := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	JoinDocument(deps, auth, wire.JoinDocumentPayload{DocumentID: "doc-1"})
	result := LeaveDocument(deps, auth, wire.LeaveDocumentPayload{DocumentID: "doc-1"})

	require.Equal(t, "doc-1", result.LeftDocumentID())
	require.Len(t, result.Emissions(), 1)
	assert.Equal(t, "user-left", result.Emissions()[0].Event())
	assert.Equal(t, wire.UserLeftPayload{UserID: "user-a"}, result.Emissions()[0].Payload())
	assert.Zero(t, rooms.RoomCount())
}

func TestLeaveDocumentNotJoined(t *testing.T) {
	deps, _ := testDeps(t)

	result := LeaveDocument(deps, NewAuthContext("user-a", "Alice", "sock-1"), wire.LeaveDocumentPayload{DocumentID: "doc-1"})

	assert.Empty(t, result.LeftDocumentID())
	assert.Empty(t, result.Emissions())
}

func TestDisconnectEffects(t *testing.T) {
	deps, rooms := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	JoinDocument(deps, auth, wire.JoinDocumentPayload{DocumentID: "doc-1"})
	result := DisconnectEffects(deps, auth, "doc-1")

	assert.Equal(t, "doc-1", result.LeftDocumentID())
	assert.Zero(t, rooms.RoomCount())

	// A socket that never joined a document produces no effects.
	none := DisconnectEffects(deps, auth, "")
	assert.Empty(t, none.Emissions())
}

func TestDisconnectEffectsStaleSocketKeepsReconnectedUser(t *testing.T) {
	deps, rooms := testDeps(t)

	JoinDocument(deps, NewAuthContext("user-a", "Alice", "sock-1"), wire.JoinDocumentPayload{DocumentID: "doc-1"})
	JoinDocument(deps, NewAuthContext("user-a", "Alice", "sock-9"), wire.JoinDocumentPayload{DocumentID: "doc-1"})

	// The old socket's ping timeout fires after the reconnect. The user must
	// stay in the room and nobody gets a user-left.
	stale := DisconnectEffects(deps, NewAuthContext("user-a", "Alice", "sock-1"), "doc-1")

	assert.Empty(t, stale.LeftDocumentID())
	assert.Empty(t, stale.Emissions())
	require.Len(t, rooms.Participants("doc-1"), 1)
	assert.Equal(t, "sock-9", rooms.Participants("doc-1")[0].SocketID)

	// The live socket's disconnect still cleans up and announces the leave.
	live := DisconnectEffects(deps, NewAuthContext("user-a", "Alice", "sock-9"), "doc-1")
	assert.Equal(t, "doc-1", live.LeftDocumentID())
	require.Len(t, live.Emissions(), 1)
	assert.Equal(t, "user-left", live.Emissions()[0].Event())
	assert.Zero(t, rooms.RoomCount())
}

func TestCursorUpdateBroadcast(t *testing.T) {
	deps, _ := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	JoinDocument(deps, auth, wire.JoinDocumentPayload{DocumentID: "doc-1"})
	result := CursorUpdate(deps, auth, wire.CursorUpdatePayload{
		DocumentID: "doc-1",
		Position:   wire.CursorPosition{X: 12, Y: 40},
	})

	require.Len(t, result.Emissions(), 1)
	e := result.Emissions()[0]
	assert.True(t, e.IsRoom())
	assert.True(t, e.SkipSelf())

	payload := e.Payload().(wire.CursorUpdatePayload)
	assert.Equal(t, "user-a", payload.UserID)
	assert.Equal(t, "Alice", payload.UserName)
	assert.Equal(t, wire.CursorPosition{X: 12, Y: 40}, payload.Position)
}

func TestCursorUpdateRequiresMembership(t *testing.T) {
	deps, _ := testDeps(t)

	result := CursorUpdate(deps, NewAuthContext("user-a", "Alice", "sock-1"), wire.CursorUpdatePayload{
		DocumentID: "doc-1",
		Position:   wire.CursorPosition{X: 1, Y: 1},
	})

	assert.Empty(t, result.Emissions())
}

func TestTypingToggle(t *testing.T) {
	deps, rooms := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	JoinDocument(deps, auth, wire.JoinDocumentPayload{DocumentID: "doc-1"})

	start := TypingStart(deps, auth, wire.TypingPayload{DocumentID: "doc-1"})
	require.Len(t, start.Emissions(), 1)
	assert.Equal(t, "typing-start", start.Emissions()[0].Event())
	assert.True(t, rooms.Participants("doc-1")[0].Typing)

	stop := TypingStop(deps, auth, wire.TypingPayload{DocumentID: "doc-1"})
	require.Len(t, stop.Emissions(), 1)
	assert.Equal(t, "typing-stop", stop.Emissions()[0].Event())
	assert.False(t, rooms.Participants("doc-1")[0].Typing)
}

func TestChangeIngest(t *testing.T) {
	deps, _ := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	instr := ChangeIngest(deps, auth, wire.DocumentChangePayload{
		DocumentID: "doc-1",
		BlockID:    "b1",
		Kind:       "update",
		Timestamp:  1700000000123,
		Payload: &wire.ChangeBlocks{Blocks: []collab.Block{
			{ID: "b1", Type: collab.BlockParagraph, Content: "hello"},
		}},
	})

	require.NotNil(t, instr)
	assert.Equal(t, "doc-1", instr.DocumentID())
	assert.Equal(t, "sock-1", instr.SkipSocketID())

	change := instr.Change()
	assert.Equal(t, "id-1", change.ID)
	assert.Equal(t, "user-a", change.ActorID)
	assert.Equal(t, collab.ChangeUpdate, change.Kind)
	assert.Equal(t, int64(1700000000123), change.Timestamp)
	require.NotNil(t, change.Payload)
	require.Len(t, change.Payload.Blocks, 1)
}

func TestChangeIngestRejectsMalformed(t *testing.T) {
	deps, _ := testDeps(t)
	auth := NewAuthContext("user-a", "Alice", "sock-1")

	cases := map[string]wire.DocumentChangePayload{
		"missing document":       {Kind: "update", Timestamp: 1, Payload: &wire.ChangeBlocks{Blocks: []collab.Block{{ID: "b1"}}}},
		"missing timestamp":      {DocumentID: "doc-1", Kind: "update", Payload: &wire.ChangeBlocks{Blocks: []collab.Block{{ID: "b1"}}}},
		"unknown kind":           {DocumentID: "doc-1", Kind: "replace", Timestamp: 1, Payload: &wire.ChangeBlocks{Blocks: []collab.Block{{ID: "b1"}}}},
		"update without payload": {DocumentID: "doc-1", Kind: "update", Timestamp: 1},
		"delete without block":   {DocumentID: "doc-1", Kind: "delete", Timestamp: 1},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, ChangeIngest(deps, auth, payload))
		})
	}
}
