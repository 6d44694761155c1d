package store

import (
	"fmt"
	"strings"
)

// RulesetNotFoundError is returned when a ruleset name has no registered
// documents in the catalog.
type RulesetNotFoundError struct {
	// Ruleset is the requested ruleset name
	Ruleset string

	// Available lists the rulesets the catalog does know
	Available []string
}

// Error implements the error interface.
func (e *RulesetNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("ruleset %q not found: no rulesets registered", e.Ruleset)
	}
	return fmt.Sprintf("ruleset %q not found (available: %s)", e.Ruleset, strings.Join(e.Available, ", "))
}

// RulesetDecodeError is returned when a rule document's content is not a JSON
// object whose values are rule strings.
type RulesetDecodeError struct {
	// Ruleset is the ruleset being loaded (empty when decoding a lone document)
	Ruleset string

	// Document is the name of the document that failed to decode
	Document string

	// Location is where the document was read from
	Location string

	// Line is the 1-indexed line of the offending entry, 0 if unknown
	Line int

	// Message describes the problem
	Message string

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *RulesetDecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("failed to decode rule document %q", e.Document))
	if e.Ruleset != "" {
		sb.WriteString(fmt.Sprintf(" of ruleset %q", e.Ruleset))
	}
	if e.Location != "" {
		sb.WriteString(fmt.Sprintf(" (%s", e.Location))
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf(":%d", e.Line))
		}
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *RulesetDecodeError) Unwrap() error {
	return e.Cause
}

// LoadError represents an I/O failure while reading a rule document, such as
// "file not found", "permission denied" or a size limit violation.
type LoadError struct {
	// Document is the name of the document being read
	Document string

	// Location is the path or key the document was read from
	Location string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule document %q from %q: %s: %v", e.Document, e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule document %q from %q: %s", e.Document, e.Location, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// RootDocumentError is returned when a ruleset loads but lacks the document
// designated as its entry point.
type RootDocumentError struct {
	Ruleset  string
	Document string
}

// Error implements the error interface.
func (e *RootDocumentError) Error() string {
	return fmt.Sprintf("ruleset %q has no root document %q", e.Ruleset, e.Document)
}
