// Package telemetry groups the observability packages of jsonrules.
//
// # Components
//
//   - logging: slog setup from configuration, with request, ruleset and
//     run IDs carried through the context
//   - metrics: Prometheus counters and histograms for validation runs and
//     ruleset reloads, on a private registry
//   - tracing: OpenTelemetry spans around validations and HTTP requests,
//     plus W3C trace context propagation
//   - health: liveness and readiness probes backed by ruleset state
//
// # Usage
//
//	logger, _ := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	v, _ := jsonrules.New("person", jsonrules.WithMetrics(collector), jsonrules.WithLogger(logger))
//
//	checker := health.New(0)
//	checker.RegisterCheck("ruleset:person", health.RulesetCheck(v.Store()))
//
// The package itself holds no code.
package telemetry
