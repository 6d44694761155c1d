// Package engine validates data trees against rule documents.
//
// For every field of a document, in document order, the engine checks that
// the key is present, accepts empty values when the rule is nullable,
// accepts a value whose kind tag is named by the rule, then tries the
// numeric, date, datetime and text fallbacks, and finally descends into the
// document named by a file constraint (element by element with array).
// The first failing field ends the run of that document.
//
// Each call to Validate owns its diagnostics, so one Validator can serve
// concurrent callers.
package engine
