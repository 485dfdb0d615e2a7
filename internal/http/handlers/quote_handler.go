// README: Quote handlers (JSON quote, plain-text receipt).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"towquote/internal/modules/pricing"
)

type QuoteHandler struct {
	quotes  *pricing.Service
	timeout time.Duration
}

func NewQuoteHandler(svc *pricing.Service, timeout time.Duration) *QuoteHandler {
	return &QuoteHandler{quotes: svc, timeout: timeout}
}

// Create handles POST /api/quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	result, ok := h.quote(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// Receipt handles POST /api/quotes/receipt.
func (h *QuoteHandler) Receipt(c *gin.Context) {
	result, ok := h.quote(c)
	if !ok {
		return
	}
	c.Header("X-Quote-Id", result.QuoteID)
	c.String(http.StatusOK, result.Receipt)
}

func (h *QuoteHandler) quote(c *gin.Context) (*pricing.QuoteResult, bool) {
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return nil, false
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.quotes.Quote(ctx, req)
	if err != nil {
		writeQuoteError(c, err)
		return nil, false
	}
	return result, true
}
