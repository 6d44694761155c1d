package errors

import (
	"fmt"
	"strings"
)

// Kind categorizes a validation diagnostic.
type Kind string

const (
	KindMissing   Kind = "missing"   // Field absent from the data
	KindMismatch  Kind = "mismatch"  // Value satisfied none of the field's constraints
	KindReference Kind = "reference" // Nested rule document could not be resolved
	KindRecursion Kind = "recursion" // Nesting exceeded the configured depth
)

// Record is one field-level diagnostic produced by a validation run.
type Record struct {
	Field      string `json:"field"`                // Dotted path to the field
	Message    string `json:"message"`              // Human-readable message
	Kind       Kind   `json:"kind"`                 // Category
	Document   string `json:"document,omitempty"`   // Rule document the field belongs to
	Suggestion string `json:"suggestion,omitempty"` // Suggested fix (optional)
}

// Error implements the error interface.
func (r Record) Error() string {
	if r.Suggestion != "" {
		return fmt.Sprintf("[%s] %s (%s)", r.Kind, r.Message, r.Suggestion)
	}
	return fmt.Sprintf("[%s] %s", r.Kind, r.Message)
}

// List collects the records of one validation run in insertion order.
type List struct {
	Records []Record
}

// NewList creates a new empty list.
func NewList() *List {
	return &List{Records: make([]Record, 0)}
}

// Add appends a record.
func (l *List) Add(r Record) {
	l.Records = append(l.Records, r)
}

// Reset drops every record while keeping the backing storage.
func (l *List) Reset() {
	l.Records = l.Records[:0]
}

// HasErrors returns true if the list contains any records.
func (l *List) HasErrors() bool {
	return len(l.Records) > 0
}

// Count returns the number of records.
func (l *List) Count() int {
	return len(l.Records)
}

// Snapshot returns a copy of the records.
func (l *List) Snapshot() []Record {
	out := make([]Record, len(l.Records))
	copy(out, l.Records)
	return out
}

// Error implements the error interface.
func (l *List) Error() string {
	if !l.HasErrors() {
		return ""
	}
	if len(l.Records) == 1 {
		return l.Records[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", l.Count()))
	for i, r := range l.Records {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, r.Error()))
	}
	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (l *List) ToError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// ByKind returns all records of the given kind.
func (l *List) ByKind(kind Kind) []Record {
	var result []Record
	for _, r := range l.Records {
		if r.Kind == kind {
			result = append(result, r)
		}
	}
	return result
}

// HasKind returns true if at least one record has the given kind.
func (l *List) HasKind(kind Kind) bool {
	for _, r := range l.Records {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Fields returns the field path of every record, in order.
func (l *List) Fields() []string {
	out := make([]string, len(l.Records))
	for i, r := range l.Records {
		out[i] = r.Field
	}
	return out
}
