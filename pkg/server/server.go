// Package server exposes the analysis pipeline and the approval workflow
// over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/runixlabs/runix/pkg/datasource"
	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/storage"
)

// Server serves the analysis API. store may be nil, in which case analysis
// results are returned but not persisted and history endpoints report
// storage as disabled.
type Server struct {
	engine    *engine.Engine
	source    datasource.DataSource
	store     storage.Store
	projectID string
	logger    *slog.Logger

	httpServer *http.Server
}

// New assembles a server around the pipeline collaborators.
func New(eng *engine.Engine, source datasource.DataSource, store storage.Store, projectID string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    eng,
		source:    source,
		store:     store,
		projectID: projectID,
		logger:    logger,
	}
}

// Router builds the chi router with the API routes and global middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/recommendations", s.handleListRecommendations)
		r.Get("/recommendations/{id}", s.handleGetRecommendation)
		r.Post("/recommendations/{id}/decision", s.handleDecision)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

// Start runs the HTTP server until the context is canceled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
