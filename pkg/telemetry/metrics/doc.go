// Package metrics provides Prometheus metrics for the validation service.
//
// # Overview
//
// A Collector owns a private registry and implements engine.Recorder, so it
// can be handed to a validator as-is. It also observes ruleset reloads.
//
// # Metrics
//
//   - jsonrules_validations_total{ruleset,result}
//   - jsonrules_validation_duration_seconds{ruleset}
//   - jsonrules_validation_errors_total{ruleset,kind}
//   - jsonrules_ruleset_reloads_total{ruleset,status}
//   - jsonrules_ruleset_reload_duration_seconds{ruleset}
//   - jsonrules_ruleset_documents{ruleset}
//
// The namespace prefix comes from MetricsConfig.Namespace.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.ObserveStore(v.Store())
//	mux.Handle("/metrics", collector.Handler())
//
// Ruleset label values are capped by a CardinalityLimiter; names beyond
// the cap are aggregated under "other".
package metrics
