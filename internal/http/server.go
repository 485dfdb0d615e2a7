// README: API gateway; wires handlers to the pricing service and runs the HTTP server.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"towquote/internal/http/handlers"
	"towquote/internal/modules/pricing"
)

const shutdownTimeout = 10 * time.Second

type ServerDeps struct {
	Pricing *pricing.Service
	// Places may be nil when no maps key is configured.
	Places         handlers.PlaceSuggester
	RequestTimeout time.Duration
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, deps ServerDeps) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
