package websocket

import (
	socket "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/scribehq/scribe/internal/wire"
	"github.com/scribehq/scribe/pkg/logger"
)

func (s *SocketServer) handleConnection(client *socket.Socket) {
	socketID := string(client.Id())

	logger.Infof("Socket.IO connection attempt (socket ID: %s)", socketID)

	handshake := client.Handshake()

	authMap := handshake.Auth
	if len(authMap) == 0 {
		logger.Warnf("Socket.IO missing auth data (socket %s)", socketID)
		client.Emit("error", map[string]string{"message": "Missing authentication data"})
		client.Disconnect(true)
		return
	}

	var authPayload wire.SocketAuthPayload
	if err := decodeAny(authMap, &authPayload); err != nil {
		logger.Warnf("Socket.IO invalid auth data (socket %s): %v", socketID, err)
		client.Emit("error", map[string]string{"message": "Invalid authentication data"})
		client.Disconnect(true)
		return
	}

	// Do not log the handshake auth payload; it contains a bearer token.
	claims, err := s.jwtManager.VerifyToken(authPayload.Token)
	if err != nil {
		logger.Warnf("Socket.IO invalid token (socket %s): %v", socketID, err)
		client.Emit("error", map[string]string{"message": "Invalid authentication token"})
		client.Disconnect(true)
		return
	}

	userID := claims.Subject
	logger.Debugf("Socket.IO token verified: userID=%s socketId=%s", userID, socketID)

	socketData := &SocketData{
		UserID:    userID,
		UserName:  claims.UserName,
		Socket:    client,
		documents: make(map[string]struct{}),
	}
	s.socketData.Store(socketID, socketData)

	logger.Infof("Socket.IO client ready (user: %s)", userID)

	s.registerClientHandlers(client, socketID)
}
