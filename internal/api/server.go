package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcferry08/dwelltime/internal/api/middleware"
	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/storage"
)

const (
	serviceName    = "dwelltime"
	serviceVersion = "1.0.0-dev"
)

// ActivitySource supplies streamed activity events for compliance runs. The
// Kafka ingest buffer implements it.
type ActivitySource interface {
	Snapshot() []feeds.ActivityEvent
}

// HealthChecker verifies a storage backend is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies carries the server's injected collaborators, separated from
// pure configuration. Nil fields disable the corresponding feature: a nil
// KeyStore disables authentication, a nil RateLimiter disables limiting, a
// nil ActivitySource rejects streamed runs, a nil HealthChecker makes
// readiness unconditional.
type Dependencies struct {
	RunStore    storage.RunStore
	KeyStore    storage.KeyStore
	RateLimiter middleware.RateLimiter
	Aliases     *feeds.Aliases
	Activity    ActivitySource
	Health      HealthChecker
}

// Server represents the HTTP API server.
type Server struct {
	httpServer  *http.Server
	logger      *slog.Logger
	config      *ServerConfig
	startTime   time.Time
	runStore    storage.RunStore
	keyStore    storage.KeyStore
	rateLimiter middleware.RateLimiter
	aliases     *feeds.Aliases
	activity    ActivitySource
	health      HealthChecker
}

// NewServer creates a new HTTP server instance with structured logging and
// the full middleware stack.
func NewServer(cfg *ServerConfig, deps Dependencies) *Server {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	mux := http.NewServeMux()

	server := &Server{
		logger:      logger,
		config:      cfg,
		runStore:    deps.RunStore,
		keyStore:    deps.KeyStore,
		rateLimiter: deps.RateLimiter,
		aliases:     deps.Aliases,
		activity:    deps.Activity,
		health:      deps.Health,
	}

	server.setupRoutes(mux)

	if deps.KeyStore != nil {
		logger.Info("API key authentication middleware enabled")
	} else {
		logger.Warn("KeyStore not configured, API key authentication disabled")
	}

	if deps.RateLimiter != nil {
		logger.Info("Rate limiting middleware enabled")
	} else {
		logger.Warn("RateLimiter not configured, rate limiting disabled")
	}

	// Middleware executes in the order listed (top-to-bottom):
	//   1. CorrelationID - tag every request and response
	//   2. Recovery - catch panics in all downstream middleware
	//   3. APIKeyAuth - authenticate before doing any work (optional)
	//   4. RateLimit - block floods before expensive operations (optional)
	//   5. RequestLogger - log only legitimate requests
	//   6. CORS - lightweight header manipulation
	handler := middleware.Apply(mux,
		middleware.WithCorrelationID(),
		middleware.WithRecovery(logger),
		middleware.WithAPIKeyAuth(deps.KeyStore, logger),
		middleware.WithRateLimit(deps.RateLimiter, logger),
		middleware.WithRequestLogger(logger),
		middleware.WithCORS(cfg.ToCORSConfig()),
	)

	server.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server
}

// Start starts the HTTP server and blocks until shutdown. It handles
// graceful shutdown on SIGINT and SIGTERM.
func (s *Server) Start() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	s.startTime = time.Now()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("Starting dwelltime API server",
			slog.String("address", s.config.Address()),
			slog.Duration("read_timeout", s.config.ReadTimeout),
			slog.Duration("write_timeout", s.config.WriteTimeout),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-stop:
		s.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

		return s.shutdown()
	}
}

// shutdown gracefully shuts down the server and its closable collaborators.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Initiating server shutdown",
		slog.Duration("shutdown_timeout", s.config.ShutdownTimeout))

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if limiter, ok := s.rateLimiter.(io.Closer); ok && s.rateLimiter != nil {
		if err := limiter.Close(); err != nil {
			s.logger.Error("Failed to close rate limiter", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("Server shutdown completed")

	return nil
}
