package websocket

import (
	socket "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/scribehq/scribe/internal/websocket/handlers"
	"github.com/scribehq/scribe/pkg/logger"
)

func (s *SocketServer) emitHandlerEmissions(client *socket.Socket, callerSocketID string, result handlers.EventResult) {
	for _, em := range result.Emissions() {
		skipSocketID := ""
		if em.SkipSelf() {
			skipSocketID = callerSocketID
		}
		switch {
		case em.IsCaller():
			client.Emit(em.Event(), em.Payload())
		case em.IsRoom():
			s.EmitToDocument(em.DocumentID(), em.Event(), em.Payload(), skipSocketID)
		}
	}

	// Keep the socket's room bindings in sync so document-scoped emissions and
	// disconnect cleanup target the right rooms.
	if sd := s.getSocketData(callerSocketID); sd.Socket != nil {
		if joined := result.JoinedDocumentID(); joined != "" {
			sd.bindDocument(joined)
		}
		if left := result.LeftDocumentID(); left != "" {
			sd.unbindDocument(left)
		}
	}
}

func onTypedEvent[Req any](
	s *SocketServer,
	client *socket.Socket,
	event string,
	handler func(handlers.Deps, handlers.AuthContext, Req) handlers.EventResult,
) {
	client.On(event, func(data ...any) {
		socketID := string(client.Id())
		sd := s.getSocketData(socketID)
		raw, _ := getFirstAnyWithAck(data)

		var req Req
		if err := decodeAny(raw, &req); err != nil {
			logger.Warnf("%s decode error: %v (type=%T)", event, err, raw)
			return
		}

		auth := handlers.NewAuthContext(sd.UserID, sd.UserName, socketID)
		result := handler(s.deps, auth, req)

		s.emitHandlerEmissions(client, socketID, result)
	})
}
