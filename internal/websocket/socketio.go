package websocket

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/scribehq/scribe/internal/crypto"
	"github.com/scribehq/scribe/internal/document/runtime"
	"github.com/scribehq/scribe/internal/presence"
	"github.com/scribehq/scribe/internal/websocket/handlers"
	"github.com/scribehq/scribe/pkg/logger"
	pkgtypes "github.com/scribehq/scribe/pkg/types"
)

// SocketServer wraps the Socket.IO server for Scribe's live editing sessions.
type SocketServer struct {
	jwtManager *crypto.JWTManager
	server     *socket.Server
	socketData sync.Map // Maps socket ID to connection metadata
	rooms      *presence.Manager
	documents  *runtime.Manager
	deps       handlers.Deps
}

// Options tunes transport behaviour.
type Options struct {
	// PingInterval/PingTimeout drive stale-socket detection: a client that
	// stops answering pings is disconnected and its presence is cleaned up
	// even when no leave-document message ever arrives.
	PingInterval time.Duration
	PingTimeout  time.Duration
}

// NewSocketServer creates a new Socket.IO server wired to the per-document
// collaboration runtime. publisher may be nil when running a single instance.
func NewSocketServer(st runtime.Store, jwtManager *crypto.JWTManager, publisher runtime.Publisher, opts Options) *SocketServer {
	serverOpts := socket.DefaultServerOptions()

	serverOpts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})

	pingInterval := opts.PingInterval
	if pingInterval <= 0 {
		pingInterval = 25 * time.Second
	}
	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 60 * time.Second
	}
	serverOpts.SetPingInterval(pingInterval)
	serverOpts.SetPingTimeout(pingTimeout)

	serverOpts.SetPath("/v1/updates")

	server := socket.NewServer(nil, serverOpts)

	s := &SocketServer{
		jwtManager: jwtManager,
		server:     server,
		socketData: sync.Map{},
		rooms:      presence.NewManager(),
	}
	s.documents = runtime.NewManager(st, s, publisher)
	s.deps = handlers.NewDeps(s.rooms, time.Now, pkgtypes.NewCUID)

	s.setupHandlers()

	return s
}

// SocketData stores connection metadata for each socket. A socket can be
// bound to several document rooms at once; the set is mutex-guarded because
// the per-document runtime goroutines read it through EmitToDocument while
// join/leave callbacks write it.
type SocketData struct {
	UserID   string
	UserName string
	Socket   *socket.Socket

	mu        sync.Mutex
	documents map[string]struct{}
}

func (sd *SocketData) bindDocument(documentID string) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	if sd.documents == nil {
		sd.documents = make(map[string]struct{})
	}
	sd.documents[documentID] = struct{}{}
}

func (sd *SocketData) unbindDocument(documentID string) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	delete(sd.documents, documentID)
}

func (sd *SocketData) inDocument(documentID string) bool {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	_, ok := sd.documents[documentID]
	return ok
}

// boundDocuments snapshots the rooms this socket is joined to, sorted for
// stable iteration.
func (sd *SocketData) boundDocuments() []string {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	out := make([]string, 0, len(sd.documents))
	for id := range sd.documents {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// setupHandlers configures Socket.IO event handlers
func (s *SocketServer) setupHandlers() {
	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client)
	})
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func getFirstAnyWithAck(data []any) (any, func(...any)) {
	var ack func(...any)
	if len(data) == 0 {
		return nil, nil
	}
	if cb, ok := data[len(data)-1].(func(...any)); ok {
		ack = cb
		data = data[:len(data)-1]
	} else if cb, ok := data[len(data)-1].(socket.Ack); ok {
		ack = func(args ...any) {
			cb(args, nil)
		}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return nil, ack
	}
	return data[0], ack
}

// getSocketData retrieves socket metadata by socket ID
func (s *SocketServer) getSocketData(socketID string) *SocketData {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok {
			return sd
		}
	}
	return &SocketData{}
}

// EmitToDocument sends an event to every socket joined to a document,
// optionally skipping the originating socket. The collaboration runtime uses
// it to fan applied changes out to the room.
func (s *SocketServer) EmitToDocument(documentID, event string, payload any, skipSocketID string) {
	s.socketData.Range(func(key, value any) bool {
		sd, ok := value.(*SocketData)
		if !ok {
			return true
		}
		if skipSocketID != "" && key == skipSocketID {
			return true
		}
		if !sd.inDocument(documentID) || sd.Socket == nil {
			return true
		}
		logger.Tracef("Emitting %s to socket %v (document %s)", event, key, documentID)
		sd.Socket.Emit(event, payload)
		return true
	})
}

// Documents exposes the collaboration runtime for HTTP handlers and the
// cross-instance relay.
func (s *SocketServer) Documents() *runtime.Manager {
	return s.documents
}

// Rooms exposes presence state for read-only surfaces.
func (s *SocketServer) Rooms() *presence.Manager {
	return s.rooms
}

// HandleSocketIO creates a Gin handler for Socket.IO
func (s *SocketServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "false")

		if c.Request.Method == "OPTIONS" {
			c.Status(http.StatusOK)
			return
		}

		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server
func (s *SocketServer) Close() error {
	s.server.Close(nil)
	return nil
}
