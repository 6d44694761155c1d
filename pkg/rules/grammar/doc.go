// Package grammar parses per-field rule strings.
//
// A rule string is a "|"-separated list of constraint tokens. Each token is a
// bare name ("integer") or a name with one parameter ("file,address"):
//
//	rs := grammar.Parse("file,address|array|nullable")
//	rs.Has(grammar.KindNullable)     // true
//	doc, _ := rs.Param(grammar.KindFile) // "address"
//
// There is no escaping for "|" or "," inside a parameter. Parsing never fails;
// names the engine does not know are kept as KindUnknown so linters can
// report them.
package grammar
