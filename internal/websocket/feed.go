package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/scribehq/scribe/internal/wire"
	"github.com/scribehq/scribe/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// PresenceSnapshot is one frame of the read-only presence feed.
type PresenceSnapshot struct {
	DocumentID string             `json:"documentId"`
	Users      []wire.SessionUser `json:"users"`
	At         int64              `json:"at"`
}

// HandlePresenceFeed serves a plain WebSocket stream of a document's room
// membership. Unlike the Socket.IO surface it is read-only: dashboards and
// the document list UI can watch who is editing without joining the session.
func (s *SocketServer) HandlePresenceFeed(c *gin.Context) {
	documentID := c.Query("documentId")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentId is required"})
		return
	}

	// Browsers cannot set headers on WebSocket upgrades; the token rides in
	// the query string instead.
	if _, err := s.jwtManager.VerifyToken(c.Query("token")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("presence feed upgrade error: %v", err)
		return
	}
	defer conn.Close()

	logger.Debugf("presence feed opened for document %s", documentID)

	// Drain client frames so close/ping control messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		snapshot := PresenceSnapshot{
			DocumentID: documentID,
			Users:      s.presenceUsers(documentID),
			At:         time.Now().UnixMilli(),
		}
		if err := conn.WriteJSON(snapshot); err != nil {
			logger.Debugf("presence feed closed for document %s: %v", documentID, err)
			return
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (s *SocketServer) presenceUsers(documentID string) []wire.SessionUser {
	participants := s.rooms.Participants(documentID)
	users := make([]wire.SessionUser, 0, len(participants))
	for _, p := range participants {
		users = append(users, wire.SessionUser{
			UserID:   p.UserID,
			UserName: p.UserName,
			Color:    p.Color,
			Typing:   p.Typing,
			Cursor:   p.Cursor,
		})
	}
	return users
}
