package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Reloader is anything that can re-read its rule documents.
type Reloader interface {
	Ruleset() string
	Reload() error
}

// ReloadScheduler reloads rulesets on a cron schedule, for deployments
// where rule files change on shared storage that fsnotify cannot observe.
type ReloadScheduler struct {
	schedule  string
	reloaders []Reloader
	cron      *cron.Cron
	mu        sync.Mutex
	logger    *slog.Logger
	running   bool
}

// NewReloadScheduler creates a scheduler for the given standard five-field
// cron expression. An empty schedule yields a scheduler that never starts.
func NewReloadScheduler(schedule string, logger *slog.Logger, reloaders ...Reloader) (*ReloadScheduler, error) {
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadScheduler{
		schedule:  schedule,
		reloaders: reloaders,
		cron:      cron.New(),
		logger:    logger.With("component", "rules.scheduler"),
	}, nil
}

// Start registers the reload job and starts the cron loop. The scheduler
// stops itself when ctx is cancelled.
func (s *ReloadScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("Reload schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("failed to schedule reload: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Reload scheduler started",
		"schedule", s.schedule,
		"rulesets", len(s.reloaders),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce reloads every registered ruleset once and returns the number of
// failures.
func (s *ReloadScheduler) RunOnce() int {
	failed := 0
	for _, r := range s.reloaders {
		if err := r.Reload(); err != nil {
			failed++
			s.logger.Error("Scheduled reload failed",
				"ruleset", r.Ruleset(),
				"error", err,
			)
		}
	}
	s.logger.Debug("Scheduled reload completed",
		"rulesets", len(s.reloaders),
		"failed", failed,
	)
	return failed
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *ReloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("Reload scheduler stopped")
	}
}

// IsRunning reports whether the cron loop is active.
func (s *ReloadScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled reload, nil when not scheduled.
func (s *ReloadScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
