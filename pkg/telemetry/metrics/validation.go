package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nocartorio/jsonrules/pkg/config"
)

// Result label values of validations_total.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// ValidationMetrics tracks validation runs.
//
// Metrics:
//   - jsonrules_validations_total: Runs by ruleset and result
//   - jsonrules_validation_duration_seconds: Run duration by ruleset
//   - jsonrules_validation_errors_total: Diagnostics by ruleset and kind
type ValidationMetrics struct {
	validationsTotal   *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics with the
// provided registry.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validations_total",
				Help:      "Total number of validation runs",
			},
			[]string{"ruleset", "result"},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				// Runs are in-memory tree walks
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			[]string{"ruleset"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation diagnostics",
			},
			[]string{"ruleset", "kind"},
		),
	}

	registry.MustRegister(
		vm.validationsTotal,
		vm.validationDuration,
		vm.errorsTotal,
	)

	return vm
}

// RecordRun records one validation run.
func (vm *ValidationMetrics) RecordRun(ruleset string, ok bool, duration time.Duration) {
	result := ResultFail
	if ok {
		result = ResultPass
	}
	vm.validationsTotal.WithLabelValues(ruleset, result).Inc()
	vm.validationDuration.WithLabelValues(ruleset).Observe(duration.Seconds())
}

// RecordError records one diagnostic of the given kind.
func (vm *ValidationMetrics) RecordError(ruleset, kind string) {
	vm.errorsTotal.WithLabelValues(ruleset, kind).Inc()
}
