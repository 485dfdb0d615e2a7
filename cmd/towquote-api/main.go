// README: Entry point; loads config, wires the catalog store, distance lookup and quote service, starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"towquote/internal/config"
	httptransport "towquote/internal/http"
	"towquote/internal/http/handlers"
	"towquote/internal/infra"
	"towquote/internal/maps"
	"towquote/internal/modules/catalog"
	"towquote/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level})))
	if cfg.Log.Level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := infra.NewCatalogStore(ctx, cfg)
	if err != nil {
		slog.Error("catalog store", "source", cfg.Catalog.Source, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	catalogLoader := catalog.NewLoader(store)
	if _, err := catalogLoader.Load(ctx); err != nil {
		// Documents are re-read on every quote.
		slog.Warn("catalog not loadable at startup", "source", cfg.Catalog.Source, "err", err)
	}

	var (
		distance pricing.DistanceProvider
		places   handlers.PlaceSuggester
	)
	if cfg.Maps.APIKey != "" {
		distanceSvc, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			slog.Error("maps client", "err", err)
			os.Exit(1)
		}
		placesSvc, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.Country)
		if err != nil {
			slog.Error("places client", "err", err)
			os.Exit(1)
		}
		distance, places = distanceSvc, placesSvc
	} else {
		slog.Warn("GOOGLE_MAPS_API_KEY not set; only requests with distance_miles can be quoted")
	}

	pricingSvc := pricing.NewService(catalogLoader, distance, pricing.WithDistanceTimeout(cfg.Maps.DistanceTimeout))

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.ServerDeps{
		Pricing:        pricingSvc,
		Places:         places,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err := server.Run(ctx); err != nil {
		slog.Error("http server", "err", err)
		os.Exit(1)
	}
}
