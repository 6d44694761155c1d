package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nocartorio/jsonrules/pkg/datatree"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/store"
)

// DefaultMaxDepth bounds how many nested documents one run may descend.
const DefaultMaxDepth = 32

// Resolver looks up rule documents by name. *store.Store implements it.
type Resolver interface {
	Resolve(name string) (*store.Document, bool)
}

// versioned is implemented by resolvers that can report a content version.
type versioned interface {
	Version() string
}

// viewer is implemented by resolvers whose content can change between
// runs. A run resolves every document through one view.
type viewer interface {
	View() *store.View
}

// Options configures a Validator.
type Options struct {
	// Ruleset is the ruleset name reported in results and metrics
	Ruleset string

	// Root is the entry-point document (default: "base")
	Root string

	// MaxDepth caps nested document recursion (default: 32)
	MaxDepth int

	// StrictReferences turns an unresolvable file reference into a
	// reference diagnostic instead of a plain mismatch
	StrictReferences bool

	// Logger receives run summaries at debug level
	Logger *slog.Logger

	// Recorder receives per-run measurements
	Recorder Recorder
}

// Validator walks data trees against the documents of one ruleset.
// A Validator holds no per-run state and is safe for concurrent use.
type Validator struct {
	resolver Resolver
	opts     Options
	logger   *slog.Logger
	recorder Recorder
}

// New creates a validator over resolver.
func New(resolver Resolver, opts Options) (*Validator, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if opts.Root == "" {
		opts.Root = store.DefaultRootDocument
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Validator{
		resolver: resolver,
		opts:     opts,
		logger:   logger.With("component", "rules.engine"),
		recorder: recorder,
	}, nil
}

// Root returns the entry-point document name.
func (v *Validator) Root() string {
	return v.opts.Root
}

// MaxDepth returns the effective recursion limit.
func (v *Validator) MaxDepth() int {
	return v.opts.MaxDepth
}

// Validate checks data against the root document and returns a result
// scoped to this call. data may be a datatree.Node or any value accepted
// by datatree.FromValue; it must be an object.
func (v *Validator) Validate(data any) *Result {
	start := time.Now()
	c := newCollector(v.resolver)
	if rv, ok := v.resolver.(viewer); ok {
		c.docs = rv.View()
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Ruleset:   v.opts.Ruleset,
		Root:      v.opts.Root,
		StartedAt: start,
	}
	if rv, ok := c.docs.(versioned); ok {
		result.Version = rv.Version()
	}

	result.OK = v.run(c, data)
	result.Errors = c.records()
	result.Duration = time.Since(start)

	v.recorder.RecordValidation(v.opts.Ruleset, result.OK, result.Duration)
	for _, r := range result.Errors {
		v.recorder.RecordError(v.opts.Ruleset, r.Kind)
	}

	v.logger.Debug("Validation completed",
		"run_id", result.RunID,
		"ruleset", result.Ruleset,
		"ok", result.OK,
		"errors", len(result.Errors),
		"duration_us", result.Duration.Microseconds(),
	)

	return result
}

func (v *Validator) run(c *collector, data any) bool {
	root, err := datatree.FromValue(data)
	if err != nil {
		c.add(ruleerrors.Record{
			Message: fmt.Sprintf("Unsupported input: %v", err),
			Kind:    ruleerrors.KindMismatch,
		})
		return false
	}
	if !root.IsObject() {
		c.add(ruleerrors.Record{
			Message: fmt.Sprintf("Input must be an object, got %s", root.Kind()),
			Kind:    ruleerrors.KindMismatch,
		})
		return false
	}

	doc, ok := c.docs.Resolve(v.opts.Root)
	if !ok {
		c.add(ruleerrors.Record{
			Message:  fmt.Sprintf("Rule document '%s' not found", v.opts.Root),
			Kind:     ruleerrors.KindReference,
			Document: v.opts.Root,
		})
		return false
	}

	return v.validateItems(c, root, doc, "", 0)
}
