// Package logging builds the structured loggers used across jsonrules.
//
// It wraps log/slog with level and format parsing and a handler that copies
// request, ruleset and run identifiers from the context into every record:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "Validation completed", "ok", true)
package logging
