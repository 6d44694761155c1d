package audit

import (
	"context"
	"fmt"
	"log/slog"

	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/rules/engine"
)

// MemoryPath selects a MemoryStore in AuditConfig.Path.
const MemoryPath = ":memory:"

// Open creates the store described by cfg: a MemoryStore for MemoryPath,
// otherwise a SQLiteStore at cfg.Path. It does not check cfg.Enabled.
func Open(cfg config.AuditConfig) (Store, error) {
	switch cfg.Path {
	case "":
		return nil, fmt.Errorf("audit path cannot be empty")
	case MemoryPath:
		return NewMemoryStore(0), nil
	default:
		return NewSQLiteStore(cfg.Path)
	}
}

// Recorder writes validation results to a Store, logging instead of
// failing when the write does not succeed.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With("component", "audit"),
	}
}

// Record persists result. Failures are logged and returned.
func (r *Recorder) Record(ctx context.Context, result *engine.Result) error {
	entry := NewEntry(result)
	if err := r.store.Record(ctx, entry); err != nil {
		r.logger.Warn("Failed to record validation run",
			"ruleset", result.Ruleset,
			"run_id", result.RunID,
			"error", err,
		)
		return err
	}
	return nil
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	return r.store
}
