// Package server provides the HTTP API over the environment fleet. All
// endpoints are read-only observers of the simulation; the tick loop is
// the sole writer.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/internal/environment"
	"github.com/dudecon/SpaceWheat-sub011/internal/telemetry"
)

// SnapshotHistory serves persisted per-tick records.
type SnapshotHistory interface {
	History(ctx context.Context, envID string, limit int) ([]telemetry.Record, error)
	Latest(ctx context.Context, envID string) (*telemetry.Record, error)
}

// Config holds server configuration.
type Config struct {
	Log     zerolog.Logger
	Manager *environment.Manager
	History SnapshotHistory
	Port    int
	DevMode bool
	// StreamInterval is the Bloch websocket push period.
	StreamInterval time.Duration
}

// Server represents the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	manager        *environment.Manager
	history        SnapshotHistory
	streamInterval time.Duration
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		manager:        cfg.Manager,
		history:        cfg.History,
		streamInterval: cfg.StreamInterval,
	}
	if s.streamInterval <= 0 {
		s.streamInterval = 100 * time.Millisecond
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the chi mux for tests.
func (s *Server) Router() http.Handler { return s.router }

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/environments", func(r chi.Router) {
			r.Get("/", s.handleListEnvironments)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleEnvironmentDetail)
				r.Get("/observables", s.handleObservables)
				r.Get("/coherence", s.handleCoherence)
				r.Get("/mutual-information", s.handleMutualInformation)
				r.Get("/bloch", s.handleBloch)
				r.Get("/history", s.handleHistory)
				r.Get("/stream", s.handleBlochStream)
			})
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
