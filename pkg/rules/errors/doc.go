// Package errors provides the diagnostic records produced by validation runs.
//
// A Record names the field (as a dotted path such as "addr.city" or
// "items[1].city"), a human-readable message and a Kind:
//
//	KindMissing    the field is absent from the data
//	KindMismatch   the value satisfied none of the field's constraints
//	KindReference  a nested rule document could not be resolved
//	KindRecursion  nesting exceeded the configured depth
//
// Records of one run accumulate in a List in insertion order, which follows
// rule-document field order and recursion depth. Lists are never shared
// between runs.
//
// Suggestions use Levenshtein distance to point at a likely intended name:
//
//	errors.SuggestKey("emial", []string{"email", "name"})
//	// Returns: "Did you mean 'email'?"
package errors
