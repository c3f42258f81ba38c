package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type userURI struct {
	UserID string `uri:"userId" binding:"required,uuid"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "User.List")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:userId.
func (h *Handler) GetUser(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.renderBindError(c, err)
		return
	}

	u, err := h.Users.GetUser(c.Request.Context(), uri.UserID)
	if err != nil {
		h.renderError(c, err, "User.Get")
		return
	}
	c.JSON(http.StatusOK, u)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.Hub.Connections()})
}
