package jsonrules

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"nocartorio/jsonrules/pkg/audit"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/rules/engine"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/store"
	"nocartorio/jsonrules/pkg/telemetry/logging"
	"nocartorio/jsonrules/pkg/telemetry/tracing"
)

// Validator checks data trees against one named ruleset.
//
// Check is safe for concurrent use. Validate and Errors keep the outcome of
// the most recent Validate call on the instance; they are mutex guarded
// but callers sharing one instance should prefer Check.
type Validator struct {
	ruleset string
	store   *store.Store
	engine  *engine.Validator
	logger  *slog.Logger

	recorder  *audit.Recorder
	ownsAudit audit.Store

	mu   sync.Mutex
	last []ruleerrors.Record
}

// New loads the named ruleset and returns a validator for it.
//
// The ruleset is looked up in the catalog from WithCatalog, WithConfig or
// the global configuration, in that order. New fails with
// *store.RulesetNotFoundError when the ruleset is not registered and with
// *store.RulesetDecodeError when one of its documents is malformed.
func New(ruleset string, opts ...Option) (*Validator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		cfg = config.GetConfig()
	}
	o.applyConfig(cfg)

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	s, err := openStore(ruleset, o, logger)
	if err != nil {
		return nil, err
	}

	engineOpts := engine.Options{
		Ruleset:          ruleset,
		Root:             s.RootName(),
		MaxDepth:         o.maxDepth,
		StrictReferences: o.strict,
		Logger:           logger,
	}
	if o.metrics != nil {
		engineOpts.Recorder = o.metrics
		o.metrics.ObserveStore(s)
	}

	ev, err := engine.New(s, engineOpts)
	if err != nil {
		return nil, err
	}

	v := &Validator{
		ruleset: ruleset,
		store:   s,
		engine:  ev,
		logger:  logger.With("component", "jsonrules", "ruleset", ruleset),
	}

	auditStore := o.audit
	if auditStore == nil && cfg != nil && cfg.Audit.Enabled {
		auditStore, err = audit.Open(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		v.ownsAudit = auditStore
	}
	if auditStore != nil {
		v.recorder = audit.NewRecorder(auditStore, logger)
	}

	return v, nil
}

func openStore(ruleset string, o *options, logger *slog.Logger) (*store.Store, error) {
	if len(o.documents) > 0 {
		return store.NewStatic(ruleset, o.root, o.documents...)
	}

	if o.source == nil {
		o.source = store.NewFileSource("")
	}
	var loaderCfg *store.LoaderConfig
	if o.maxFileSize > 0 {
		loaderCfg = &store.LoaderConfig{MaxFileSize: o.maxFileSize}
	}
	loader := store.NewLoader(o.catalog, o.source, loaderCfg, logger)
	return store.Open(ruleset, o.root, loader, logger)
}

// Validate checks data and reports whether it satisfies the ruleset.
// Errors returns the diagnostics of this call until the next Validate.
func (v *Validator) Validate(data any) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	result := v.Check(context.Background(), data)
	v.last = result.Errors
	return result.OK
}

// Errors returns the diagnostics of the most recent Validate call, in
// the order they were produced.
func (v *Validator) Errors() []ruleerrors.Record {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]ruleerrors.Record, len(v.last))
	copy(out, v.last)
	return out
}

// Check validates data and returns a result scoped to this call. The run
// is traced as a span on ctx and recorded to the audit store when one is
// configured.
func (v *Validator) Check(ctx context.Context, data any) *engine.Result {
	ctx, span := tracing.Start(ctx, "jsonrules.check",
		attribute.String(tracing.AttrRuleset, v.ruleset),
	)
	defer span.End()

	result := v.engine.Validate(data)

	tracing.SetRulesetAttributes(span, v.ruleset, result.Root, result.Version)
	tracing.SetValidationAttributes(span, result.RunID, result.OK, len(result.Errors))
	tracing.SetRequestAttribute(span, logging.GetRequestID(ctx))

	if v.recorder != nil {
		if err := v.recorder.Record(ctx, result); err != nil {
			tracing.SetErrorAttributes(span, err, "audit")
		}
	}

	return result
}

// Ruleset returns the ruleset name.
func (v *Validator) Ruleset() string {
	return v.ruleset
}

// Store returns the document store backing the validator.
func (v *Validator) Store() *store.Store {
	return v.store
}

// Reload re-reads the ruleset's documents. On failure the previous
// documents stay active.
func (v *Validator) Reload() error {
	return v.store.Reload()
}

// Audit returns the audit store, nil when auditing is off.
func (v *Validator) Audit() audit.Store {
	if v.recorder == nil {
		return nil
	}
	return v.recorder.Store()
}

// Close releases the audit store when the validator opened it.
func (v *Validator) Close() error {
	if v.ownsAudit != nil {
		return v.ownsAudit.Close()
	}
	return nil
}
