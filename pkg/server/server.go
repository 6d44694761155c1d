package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"

	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/jsonrules"
	"nocartorio/jsonrules/pkg/telemetry/health"
	"nocartorio/jsonrules/pkg/telemetry/metrics"
	"nocartorio/jsonrules/pkg/telemetry/tracing"
)

// BuildInfo is reported on /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server exposes validators over HTTP.
type Server struct {
	config     *config.Config
	validators map[string]*jsonrules.Validator
	metrics    *metrics.Collector
	health     *health.Checker
	build      BuildInfo
	logger     *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server for validators, keyed by ruleset name. collector
// may be nil, in which case no metrics endpoint is mounted.
func New(cfg *config.Config, validators []*jsonrules.Validator, collector *metrics.Collector, build BuildInfo, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	byName := make(map[string]*jsonrules.Validator, len(validators))
	checker := health.New(0)
	for _, v := range validators {
		byName[v.Ruleset()] = v
		checker.RegisterCheck("ruleset:"+v.Ruleset(), health.RulesetCheck(v.Store()))
	}

	return &Server{
		config:     cfg,
		validators: byName,
		metrics:    collector,
		health:     checker,
		build:      build,
		logger:     logger.With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting validation server",
			"address", ln.Addr().String(),
			"rulesets", s.Rulesets(),
		)
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("Initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("Validation server stopped")
	})

	return shutdownErr
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/rulesets/{name}/validate", s.handleValidate)
	mux.HandleFunc("GET /v1/rulesets", s.handleListRulesets)
	mux.HandleFunc("GET /v1/rulesets/{name}", s.handleGetRuleset)
	mux.HandleFunc("POST /v1/rulesets/{name}/reload", s.handleReload)
	health.Register(mux, s.health, s.build.Version, s.build.Commit, s.build.BuildTime)

	metricsCfg := s.config.Telemetry.Metrics
	if s.metrics != nil && metricsCfg.Enabled {
		mux.Handle("GET "+metricsCfg.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Rulesets returns the served ruleset names, sorted.
func (s *Server) Rulesets() []string {
	names := make([]string, 0, len(s.validators))
	for name := range s.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
