package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nocartorio/jsonrules/pkg/config"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/store"
)

// DefaultMaxRulesets caps the distinct ruleset label values. Further
// rulesets are reported under OverflowLabel.
const DefaultMaxRulesets = 1000

// OverflowLabel replaces ruleset names once the cardinality cap is hit.
const OverflowLabel = "other"

// Collector owns every Prometheus metric of the validation service. It
// implements engine.Recorder, so a validator can feed it directly.
//
// The collector registers on its own registry, never on the global default,
// so several collectors can coexist in one process and in tests.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validationMetrics *ValidationMetrics
	rulesetMetrics    *RulesetMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering on registry. A nil registry
// gets a fresh private one; a nil cfg enables metrics with the default
// namespace.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	v, _ := jsonrules.New("person", jsonrules.WithMetrics(collector))
//	http.Handle("/metrics", collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		validationMetrics:  NewValidationMetrics(cfg, registry),
		rulesetMetrics:     NewRulesetMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxRulesets),
	}
}

// RecordValidation records one completed validation run.
func (c *Collector) RecordValidation(ruleset string, ok bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.validationMetrics.RecordRun(c.label(ruleset), ok, duration)
}

// RecordError records one diagnostic produced by a run.
func (c *Collector) RecordError(ruleset string, kind ruleerrors.Kind) {
	if !c.config.Enabled {
		return
	}
	c.validationMetrics.RecordError(c.label(ruleset), string(kind))
}

// RecordReload records the outcome of a ruleset reload and, on success,
// the new document count.
func (c *Collector) RecordReload(event store.ReloadEvent) {
	if !c.config.Enabled {
		return
	}
	ruleset := c.label(event.Ruleset)
	c.rulesetMetrics.RecordReload(ruleset, event.Err == nil, event.Duration)
	if event.Err == nil {
		c.rulesetMetrics.SetDocuments(ruleset, event.Documents)
	}
}

// SetDocuments sets the loaded document count of a ruleset.
func (c *Collector) SetDocuments(ruleset string, count int) {
	if !c.config.Enabled {
		return
	}
	c.rulesetMetrics.SetDocuments(c.label(ruleset), count)
}

// ObserveStore reports the store's current document count and subscribes
// to its reloads.
func (c *Collector) ObserveStore(s *store.Store) {
	c.SetDocuments(s.Ruleset(), s.Stats().DocumentCount)
	s.OnReload(c.RecordReload)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

func (c *Collector) label(ruleset string) string {
	if !c.cardinalityLimiter.Allow(ruleset) {
		return OverflowLabel
	}
	return ruleset
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting up to maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow returns true if the value is already known or there is room for
// it, false if admitting it would exceed the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
