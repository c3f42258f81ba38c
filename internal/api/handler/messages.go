package handler

import (
	"net/http"

	"chatservice/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type listMessagesQuery struct {
	ChatID string `form:"chatId" binding:"required,uuid"`
	models.PageQuery
}

type createMessageRequest struct {
	ChatID  string `json:"chatId" binding:"required,uuid"`
	Content string `json:"content" binding:"required"`
}

// ListMessages handles GET /messages.
func (h *Handler) ListMessages(c *gin.Context) {
	var q listMessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.renderBindError(c, err)
		return
	}

	page, err := h.Messages.ListMessages(c.Request.Context(), q.ChatID, q.Page, q.PageSize)
	if err != nil {
		h.renderError(c, err, "ChatMessage.List")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateMessage handles POST /messages. The caller is the sender, and the
// message reaches the other participant's live connections like one sent
// over the hub.
func (h *Handler) CreateMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	sender := currentUserID(c)

	chat, err := h.Chats.GetChat(ctx, req.ChatID)
	if err != nil {
		h.renderError(c, err, "Chat.Get")
		return
	}
	msg, err := h.Messages.CreateMessage(ctx, req.ChatID, sender, req.Content)
	if err != nil {
		h.renderError(c, err, "ChatMessage.Create")
		return
	}

	h.Hub.Broadcast(ctx, chat, msg, sender)
	c.JSON(http.StatusCreated, msg)
}
