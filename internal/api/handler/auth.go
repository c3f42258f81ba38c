package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"

	codeUnauthorized = "Auth.Unauthorized"
)

// RequireAuth validates the bearer token and stores the caller's identity
// in the gin context. Browsers cannot set headers on a WebSocket handshake,
// so the token may also come in the access_token query parameter.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    codeUnauthorized,
				Message: "Authorization token missing",
			})
			return
		}

		claims, err := h.Tokens.Validate(token)
		if err != nil {
			h.log.Debug("Rejected token", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    codeUnauthorized,
				Message: "Invalid token or expired",
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("access_token")
}

// currentUserID returns the authenticated caller.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
