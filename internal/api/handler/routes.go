package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the routes of the service.
func NewRouter(h *Handler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1", h.RequireAuth())
	{
		api.GET("/chats", h.ListChats)
		api.GET("/chats/:chatId", h.GetChat)
		api.POST("/chats", h.CreateChat)

		api.GET("/messages", h.ListMessages)
		api.POST("/messages", h.CreateMessage)

		api.GET("/users", h.ListUsers)
		api.GET("/users/:userId", h.GetUser)

		api.GET("/chat-hub", h.ServeWebSocket)
	}
	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"user_id", currentUserID(c))
	}
}
