// Package jsonrules validates untyped data trees against named rulesets of
// JSON rule documents.
//
// A ruleset maps document names to locations. Each document maps field
// keys to rule strings such as "text|nullable" or "file,Address|array".
// Validation starts at the root document ("base" by default) and descends
// into nested documents through file constraints.
//
// # Usage
//
//	v, err := jsonrules.New("person",
//		jsonrules.WithCatalog(store.Catalog{
//			"person": {"base": "rules/person/base.json", "Addr": "rules/person/addr.json"},
//		}),
//	)
//	if err != nil {
//		return err
//	}
//
//	if !v.Validate(data) {
//		for _, rec := range v.Errors() {
//			fmt.Println(rec.Message)
//		}
//	}
//
// Concurrent callers should use Check, which returns a result scoped to
// the call:
//
//	result := v.Check(ctx, data)
//	if err := result.Err(); err != nil {
//		return err
//	}
package jsonrules
