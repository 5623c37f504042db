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

	"mercator-hq/saturn/pkg/breaker"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/judge"
	"mercator-hq/saturn/pkg/ruleset"
)

// Server is the judgment API server.
type Server struct {
	config       *config.ServerConfig
	engine       *judge.Engine
	breakers     *breaker.Registry
	rulesets     ruleset.Store
	metrics      http.Handler
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// Options carries the server's collaborators. Rulesets and Metrics may be
// nil; the corresponding endpoints then return 404.
type Options struct {
	Engine   *judge.Engine
	Breakers *breaker.Registry
	Rulesets ruleset.Store
	Metrics  http.Handler
}

// New creates a server. It does not start listening.
func New(cfg *config.ServerConfig, opts Options) *Server {
	return &Server{
		config:   cfg,
		engine:   opts.Engine,
		breakers: opts.Breakers,
		rulesets: opts.Rulesets,
		metrics:  opts.Metrics,
	}
}

// Start listens and blocks until ctx is cancelled, a shutdown signal
// arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting judgment server", "address", s.config.ListenAddress)
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

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}
		slog.Info("judgment server stopped")
	})
	return shutdownErr
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/judge", s.handleJudge)
	mux.HandleFunc("POST /v1/cache/invalidate", s.handleCacheInvalidate)
	mux.HandleFunc("GET /v1/cache/stats", s.handleCacheStats)
	mux.HandleFunc("GET /v1/breakers", s.handleBreakerList)
	mux.HandleFunc("POST /v1/breakers/{name}/reset", s.handleBreakerReset)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.rulesets != nil {
		mux.HandleFunc("PUT /v1/rulesets", s.handleRulesetSave)
		mux.HandleFunc("GET /v1/rulesets", s.handleRulesetList)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	var handler http.Handler = mux
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = recoveryMiddleware(handler)
	return handler
}
