// Package server provides the HTTP API for the La Roca Village assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hyperjump/villagerag/internal/config"
	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/pkg/utils"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 120 * time.Second

// Assistant is the question-answering backend behind the API.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
	Diagnose(ctx context.Context, question string) ([]models.Diagnostic, error)
	Health() models.Health
}

// Server is the HTTP server for the assistant API.
type Server struct {
	assistant Assistant
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(assistant Assistant, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		assistant: assistant,
		config:    cfg,
		logger:    utils.OrNop(logger),
	}
}

// Handler returns the routed API handler with middleware applied.
func (s *Server) Handler() http.Handler {
	timeout := defaultRequestTimeout
	if s.config.RequestTimeoutSecs > 0 {
		timeout = time.Duration(s.config.RequestTimeoutSecs) * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/diagnose", s.handleDiagnose)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
