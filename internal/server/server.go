// Package server exposes the valuation pipeline over HTTP for the browser
// extension.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/valuation"
)

// Service is the valuation pipeline as seen by the HTTP layer.
type Service interface {
	Compare(ctx context.Context, v model.SourceVehicle, site model.Site) (*model.ValuationResult, error)
	Margin(ctx context.Context, v model.SourceVehicle) (*model.MarginResult, error)
}

// Server serves the valuation API.
type Server struct {
	svc     Service
	fees    valuation.FeeSchedule
	origins []string
	timeout time.Duration
}

// New creates a Server. Requests run for at most timeout; zero means one minute.
func New(svc Service, fees valuation.FeeSchedule, cfg config.ServerConfig, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Server{svc: svc, fees: fees, origins: cfg.CORSOrigins, timeout: timeout}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Post("/compare", s.handleCompare)
		r.Post("/margin", s.handleMargin)
		r.Get("/fees", s.handleFees)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server: shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("server: listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
