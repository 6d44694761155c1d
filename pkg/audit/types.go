package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nocartorio/jsonrules/pkg/rules/engine"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

// DefaultListLimit applies when a Query sets no limit.
const DefaultListLimit = 100

// Entry is one recorded validation run.
type Entry struct {
	ID         string              `json:"id"`
	RunID      string              `json:"run_id"`
	Ruleset    string              `json:"ruleset"`
	Root       string              `json:"root"`
	Version    string              `json:"version,omitempty"`
	OK         bool                `json:"ok"`
	ErrorCount int                 `json:"error_count"`
	Errors     []ruleerrors.Record `json:"errors,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	Duration   time.Duration       `json:"duration_ns"`
	RecordedAt time.Time           `json:"recorded_at"`
}

// NewEntry builds an entry from a validation result.
func NewEntry(result *engine.Result) *Entry {
	errs := make([]ruleerrors.Record, len(result.Errors))
	copy(errs, result.Errors)

	return &Entry{
		ID:         uuid.New().String(),
		RunID:      result.RunID,
		Ruleset:    result.Ruleset,
		Root:       result.Root,
		Version:    result.Version,
		OK:         result.OK,
		ErrorCount: len(errs),
		Errors:     errs,
		StartedAt:  result.StartedAt,
		Duration:   result.Duration,
	}
}

// Query selects entries for List. Results are newest first.
type Query struct {
	// Ruleset restricts results to one ruleset; empty means all
	Ruleset string

	// FailedOnly drops passing runs
	FailedOnly bool

	// Since drops entries started before it; zero means no bound
	Since time.Time

	// Limit caps the number of entries (default: 100)
	Limit int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

func (q Query) matches(e *Entry) bool {
	if q.Ruleset != "" && e.Ruleset != q.Ruleset {
		return false
	}
	if q.FailedOnly && e.OK {
		return false
	}
	if !q.Since.IsZero() && e.StartedAt.Before(q.Since) {
		return false
	}
	return true
}

// Store persists validation history.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Record persists an entry. ID and RecordedAt are filled in when empty.
	Record(ctx context.Context, entry *Entry) error

	// Get returns the entry with the given ID, or nil if none exists.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns entries matching q, newest first.
	List(ctx context.Context, q Query) ([]*Entry, error)

	// Cleanup removes entries started before olderThan and returns how many
	// were removed.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

func prepare(entry *Entry) error {
	if entry == nil {
		return errNilEntry
	}
	if entry.Ruleset == "" {
		return errNoRuleset
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.RecordedAt
	}
	entry.ErrorCount = len(entry.Errors)
	return nil
}
