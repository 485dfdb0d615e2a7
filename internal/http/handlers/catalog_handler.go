// README: Catalog handler serving the quote form's option lists.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"towquote/internal/modules/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Loader
}

func NewCatalogHandler(loader *catalog.Loader) *CatalogHandler {
	return &CatalogHandler{catalog: loader}
}

// Form handles GET /api/catalog.
func (h *CatalogHandler) Form(c *gin.Context) {
	cat, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cat.Form())
}
