package handler

import (
	"net/http"

	"chatservice/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect; access is gated by the bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades an authenticated request to a live connection of
// the caller and registers it with the Chat Hub.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID := currentUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("Failed to upgrade connection", "user_id", userID, "error", err)
		return
	}

	client := chathub.NewWebSocketClient(conn, h.Hub, userID, h.SendBufferSize, h.log)
	// A refused client is already closed; its pumps send the close frame.
	h.Hub.Register(client)
	client.Run()
}
