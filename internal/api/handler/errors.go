package handler

import (
	"chatservice/backend/internal/apperror"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// renderError writes err with the status of its kind. Errors that are not
// structured are reported as internal with the fallback code.
func (h *Handler) renderError(c *gin.Context, err error, fallbackCode string) {
	appErr := apperror.As(err, fallbackCode)
	if appErr.Kind == apperror.KindInternal {
		h.log.Error("Request failed", "path", c.FullPath(), "code", appErr.Code, "error", appErr)
	}
	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// renderBindError reports a request that failed binding or validation.
func (h *Handler) renderBindError(c *gin.Context, err error) {
	h.renderError(c, apperror.FromValidation(err), apperror.CodeValidation)
}
