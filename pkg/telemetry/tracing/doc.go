// Package tracing wires OpenTelemetry spans into validation runs.
//
// The package uses the global tracer provider and propagator; exporting
// spans is left to the host application, which installs an SDK provider
// with otel.SetTracerProvider. Without one, spans are no-ops and cost
// almost nothing.
//
// # Usage
//
//	tracing.InstallPropagator()
//	mux := http.NewServeMux()
//	handler := tracing.HTTPMiddleware(mux)
//
//	ctx, span := tracing.Start(ctx, "jsonrules.check")
//	defer span.End()
//	tracing.SetValidationAttributes(span, result.RunID, result.OK, len(result.Errors))
package tracing
