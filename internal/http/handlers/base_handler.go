// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "towquote/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeQuoteError maps the error taxonomy to a status. Upstream causes and
// configuration detail stay in the log.
func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: apperrors.FieldOf(err)})
	case errors.Is(err, apperrors.ErrUpstream):
		slog.Warn("upstream failure", "path", c.FullPath(), "err", err)
		op := apperrors.MessageOf(err)
		if op == "" {
			op = "upstream request"
		}
		writeError(c, http.StatusBadGateway, op+" failed")
	case errors.Is(err, apperrors.ErrConfiguration):
		slog.Error("pricing configuration error", "path", c.FullPath(), "err", err)
		writeError(c, http.StatusInternalServerError, "pricing configuration unavailable")
	default:
		slog.Error("request failed", "path", c.FullPath(), "err", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
