package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"sophonine/auracall/pkg/adaptation"
	"sophonine/auracall/pkg/config"
	"sophonine/auracall/pkg/conversation"
	"sophonine/auracall/pkg/feedback"
	"sophonine/auracall/pkg/orchestrator"
	"sophonine/auracall/pkg/routing"
	"sophonine/auracall/pkg/server/handlers"
	"sophonine/auracall/pkg/server/middleware"
	"sophonine/auracall/pkg/telemetry/metrics"
)

// Deps carries the wired subsystems the server serves.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Store        *conversation.Store
	Engine       *adaptation.Engine
	Router       *routing.Router
	Audit        *feedback.Store
	Metrics      *metrics.Collector
}

// Server is the HTTP front end.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	deps         Deps
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the HTTP server around the wired subsystems.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, deps Deps) *Server {
	return &Server{
		config:     cfg,
		metricsCfg: metricsCfg,
		deps:       deps,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:        s.config.ListenAddress,
		Handler:     s.setupRoutes(),
		ReadTimeout: s.config.ReadTimeout,
		// WriteTimeout stays unset so streams are not cut off server-side.
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	chatHandler := handlers.NewChatHandler(s.deps.Orchestrator, s.deps.Router, s.deps.Metrics)
	historyHandler := handlers.NewSessionHistoryHandler(s.deps.Store)
	feedbackHandler := handlers.NewFeedbackHandler(s.deps.Engine, s.deps.Audit, s.deps.Metrics)
	reportHandler := handlers.NewPromptReportHandler(s.deps.Engine)
	resetHandler := handlers.NewPromptResetHandler(s.deps.Engine)
	healthHandler := handlers.NewHealthHandler(s.deps.Store, s.deps.Router)

	// The chat stream outlives any request timeout; every other route
	// gets the configured deadline.
	timeout := middleware.TimeoutMiddleware(s.config.RequestTimeout)

	mux.Handle("/chat", chatHandler)
	mux.Handle("/session/history", timeout(historyHandler))
	mux.Handle("/feedback", feedbackHandler)
	mux.Handle("/prompt/report", timeout(reportHandler))
	mux.Handle("/prompt/reset", timeout(resetHandler))
	mux.Handle("/health", timeout(healthHandler))
	if s.metricsCfg.Enabled {
		mux.Handle(s.metricsCfg.Path, s.deps.Metrics.Handler())
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.CORSAllowOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.CORSAllowOrigins
	}

	var handler http.Handler = mux
	handler = middleware.AuthMiddleware(s.config.AuthToken)(handler)
	handler = middleware.CORSMiddleware(corsConfig)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// Handler returns the configured HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
