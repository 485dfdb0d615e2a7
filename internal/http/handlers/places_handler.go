// README: Address autocomplete handler for the pickup and drop fields.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"towquote/internal/maps"
)

// PlaceSuggester completes partial addresses.
type PlaceSuggester interface {
	Suggest(ctx context.Context, input string) ([]maps.Suggestion, error)
}

type PlacesHandler struct {
	places  PlaceSuggester
	timeout time.Duration
}

// NewPlacesHandler accepts a nil suggester; requests then get 503.
func NewPlacesHandler(places PlaceSuggester, timeout time.Duration) *PlacesHandler {
	return &PlacesHandler{places: places, timeout: timeout}
}

// Suggest handles GET /api/places/suggest?input=.
func (h *PlacesHandler) Suggest(c *gin.Context) {
	if h.places == nil {
		writeError(c, http.StatusServiceUnavailable, "address lookup not configured")
		return
	}
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "missing input", Field: "input"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	suggestions, err := h.places.Suggest(ctx, input)
	if err != nil {
		slog.Warn("places suggest failed", "input", input, "err", err)
		writeError(c, http.StatusBadGateway, "address lookup failed")
		return
	}
	if suggestions == nil {
		suggestions = []maps.Suggestion{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"suggestions": suggestions})
}
