package websocket

import (
	"context"

	socket "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/scribehq/scribe/internal/websocket/handlers"
	"github.com/scribehq/scribe/internal/wire"
	"github.com/scribehq/scribe/pkg/logger"
)

func (s *SocketServer) registerClientHandlers(client *socket.Socket, socketID string) {
	// Document change - validated, then handed to the per-document runtime
	// which serializes applies and fans the result out to the room.
	client.On("document-change", func(data ...any) {
		sd := s.getSocketData(socketID)

		raw, _ := getFirstAnyWithAck(data)
		var payload wire.DocumentChangePayload
		if err := decodeAny(raw, &payload); err != nil {
			logger.Warnf("document-change decode error: %v (type=%T)", err, raw)
			return
		}

		instr := handlers.ChangeIngest(
			s.deps,
			handlers.NewAuthContext(sd.UserID, sd.UserName, socketID),
			payload,
		)
		if instr == nil {
			return
		}
		s.documents.EnqueueChange(
			context.Background(),
			instr.DocumentID(),
			instr.Change(),
			instr.SkipSocketID(),
		)
	})

	// Presence events (decode -> handler -> emissions)
	onTypedEvent[wire.JoinDocumentPayload](s, client, "join-document", handlers.JoinDocument)
	onTypedEvent[wire.LeaveDocumentPayload](s, client, "leave-document", handlers.LeaveDocument)
	onTypedEvent[wire.CursorUpdatePayload](s, client, "cursor-update", handlers.CursorUpdate)
	onTypedEvent[wire.TypingPayload](s, client, "typing-start", handlers.TypingStart)
	onTypedEvent[wire.TypingPayload](s, client, "typing-stop", handlers.TypingStop)

	// Disconnection handler - covers both graceful exits and ping timeouts,
	// so an abruptly killed client still leaves its room.
	client.On("disconnect", func(data ...any) {
		sd := s.getSocketData(socketID)
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}
		documents := sd.boundDocuments()
		logger.Infof(
			"User disconnected: %s (socket %s, documents: %v, reason: %s)",
			sd.UserID,
			socketID,
			documents,
			reason,
		)

		for _, documentID := range documents {
			result := handlers.DisconnectEffects(
				s.deps,
				handlers.NewAuthContext(sd.UserID, sd.UserName, socketID),
				documentID,
			)
			s.emitHandlerEmissions(client, socketID, result)
		}

		s.socketData.Delete(socketID)
	})
}
