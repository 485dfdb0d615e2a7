// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"towquote/internal/http/handlers"
	"towquote/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.RequestTimeout)
	r.POST("/api/quotes", quoteHandler.Create)
	r.POST("/api/quotes/receipt", quoteHandler.Receipt)

	catalogHandler := handlers.NewCatalogHandler(deps.Pricing.Catalog())
	r.GET("/api/catalog", catalogHandler.Form)

	placesHandler := handlers.NewPlacesHandler(deps.Places, deps.RequestTimeout)
	r.GET("/api/places/suggest", placesHandler.Suggest)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
