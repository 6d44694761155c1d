package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Custom keys use the "jsonrules.*" namespace.
const (
	AttrRuleset    = "jsonrules.ruleset"
	AttrRoot       = "jsonrules.root"
	AttrVersion    = "jsonrules.version"
	AttrRunID      = "jsonrules.run_id"
	AttrOK         = "jsonrules.ok"
	AttrErrorCount = "jsonrules.error_count"
	AttrRequestID  = "jsonrules.request_id"

	AttrErrorType    = "jsonrules.error.type"
	AttrErrorMessage = "error.message"
)

// SetRulesetAttributes sets the ruleset, root document and content
// version on a span.
func SetRulesetAttributes(span trace.Span, ruleset, root, version string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRuleset, ruleset),
		attribute.String(AttrRoot, root),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrVersion, version))
	}
	span.SetAttributes(attrs...)
}

// SetValidationAttributes sets the outcome of a validation run on a span.
// A failing run marks the span status as Error.
//
// Example:
//
//	SetValidationAttributes(span, result.RunID, result.OK, len(result.Errors))
func SetValidationAttributes(span trace.Span, runID string, ok bool, errorCount int) {
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.Bool(AttrOK, ok),
		attribute.Int(AttrErrorCount, errorCount),
	)
	if !ok {
		span.SetStatus(codes.Error, "validation failed")
	}
}

// SetRequestAttribute sets the request ID attribute on a span.
func SetRequestAttribute(span trace.Span, requestID string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
}

// SetErrorAttributes records err on the span and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "audit")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
