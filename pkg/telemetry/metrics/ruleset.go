package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nocartorio/jsonrules/pkg/config"
)

// Status label values of reloads_total.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RulesetMetrics tracks loaded rulesets.
//
// Metrics:
//   - jsonrules_ruleset_reloads_total: Reloads by ruleset and status
//   - jsonrules_ruleset_reload_duration_seconds: Reload duration by ruleset
//   - jsonrules_ruleset_documents: Loaded documents by ruleset
type RulesetMetrics struct {
	reloadsTotal   *prometheus.CounterVec
	reloadDuration *prometheus.HistogramVec
	documents      *prometheus.GaugeVec
}

// NewRulesetMetrics creates and registers ruleset metrics with the provided
// registry.
func NewRulesetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RulesetMetrics {
	rm := &RulesetMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "ruleset",
				Name:      "reloads_total",
				Help:      "Total number of ruleset reloads",
			},
			[]string{"ruleset", "status"},
		),

		reloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "ruleset",
				Name:      "reload_duration_seconds",
				Help:      "Duration of ruleset reloads in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"ruleset"},
		),

		documents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "ruleset",
				Name:      "documents",
				Help:      "Number of rule documents currently loaded",
			},
			[]string{"ruleset"},
		),
	}

	registry.MustRegister(
		rm.reloadsTotal,
		rm.reloadDuration,
		rm.documents,
	)

	return rm
}

// RecordReload records one reload attempt.
func (rm *RulesetMetrics) RecordReload(ruleset string, ok bool, duration time.Duration) {
	status := StatusError
	if ok {
		status = StatusSuccess
	}
	rm.reloadsTotal.WithLabelValues(ruleset, status).Inc()
	rm.reloadDuration.WithLabelValues(ruleset).Observe(duration.Seconds())
}

// SetDocuments sets the document gauge.
func (rm *RulesetMetrics) SetDocuments(ruleset string, count int) {
	rm.documents.WithLabelValues(ruleset).Set(float64(count))
}
