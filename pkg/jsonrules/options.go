package jsonrules

import (
	"log/slog"

	"nocartorio/jsonrules/pkg/audit"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/rules/store"
	"nocartorio/jsonrules/pkg/telemetry/metrics"
)

// Option configures a Validator.
type Option func(*options)

type options struct {
	root      string
	cfg       *config.Config
	source    store.Source
	catalog   store.Catalog
	documents []*store.Document
	logger    *slog.Logger
	metrics   *metrics.Collector
	audit     audit.Store

	maxDepth    int
	strict      bool
	strictSet   bool
	maxFileSize int64
}

// WithRootDocument sets the entry-point document (default "base").
func WithRootDocument(name string) Option {
	return func(o *options) { o.root = name }
}

// WithConfig supplies the configuration the ruleset catalog, rules
// directory, validation limits and audit settings are read from. Without
// it the global configuration is used when initialized.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithSource sets where document locations are read from. The default is
// the file system rooted at the configured rules directory.
func WithSource(src store.Source) Option {
	return func(o *options) { o.source = src }
}

// WithCatalog sets the ruleset catalog, overriding the configuration.
func WithCatalog(catalog store.Catalog) Option {
	return func(o *options) { o.catalog = catalog }
}

// WithDocuments validates against documents built in code. Catalog and
// source are ignored.
func WithDocuments(docs ...*store.Document) Option {
	return func(o *options) { o.documents = append(o.documents, docs...) }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records runs and reloads on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) { o.metrics = collector }
}

// WithAudit records every Check and Validate on s. The caller keeps
// ownership of s; Close does not close it.
func WithAudit(s audit.Store) Option {
	return func(o *options) { o.audit = s }
}

// WithMaxDepth caps nested document recursion.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithStrictReferences reports unresolvable nested documents as reference
// errors instead of plain mismatches.
func WithStrictReferences(strict bool) Option {
	return func(o *options) {
		o.strict = strict
		o.strictSet = true
	}
}

// applyConfig fills unset options from cfg.
func (o *options) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if o.root == "" {
		o.root = cfg.Validation.RootDocument
	}
	if o.catalog == nil && len(cfg.Rulesets) > 0 {
		o.catalog = store.Catalog(cfg.Rulesets)
	}
	if o.source == nil {
		o.source = store.NewFileSource(cfg.RulesDir)
	}
	if o.maxDepth == 0 {
		o.maxDepth = cfg.Validation.MaxDepth
	}
	if !o.strictSet {
		o.strict = cfg.Validation.StrictReferences
	}
	if o.maxFileSize == 0 {
		o.maxFileSize = cfg.Loader.MaxFileSize
	}
}
