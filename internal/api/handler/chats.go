package handler

import (
	"net/http"

	"chatservice/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type listChatsQuery struct {
	// UserID defaults to the caller.
	UserID string `form:"userId" binding:"omitempty,uuid"`
	models.PageQuery
}

type chatURI struct {
	ChatID string `uri:"chatId" binding:"required,uuid"`
}

type createChatRequest struct {
	Participants []string `json:"participants" binding:"required,len=2,unique,dive,required,uuid"`
}

// ListChats handles GET /chats.
func (h *Handler) ListChats(c *gin.Context) {
	var q listChatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.renderBindError(c, err)
		return
	}
	if q.UserID == "" {
		q.UserID = currentUserID(c)
	}

	page, err := h.Chats.ListChatsForUser(c.Request.Context(), q.UserID, q.Page, q.PageSize)
	if err != nil {
		h.renderError(c, err, "Chat.List")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetChat handles GET /chats/:chatId.
func (h *Handler) GetChat(c *gin.Context) {
	var uri chatURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.renderBindError(c, err)
		return
	}

	chat, err := h.Chats.GetChat(c.Request.Context(), uri.ChatID)
	if err != nil {
		h.renderError(c, err, "Chat.Get")
		return
	}
	c.JSON(http.StatusOK, chat)
}

// CreateChat handles POST /chats.
func (h *Handler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderBindError(c, err)
		return
	}

	chat, err := h.Chats.CreateChat(c.Request.Context(), req.Participants)
	if err != nil {
		h.renderError(c, err, "Chat.Create")
		return
	}
	c.JSON(http.StatusCreated, chat)
}
