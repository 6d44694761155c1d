// Package datatree models decoded, untyped structured data as a closed set of
// node kinds: null, bool, integer, float, string, array and object.
//
// Rule documents name value types by tag ("integer", "double", "string",
// "boolean", "array", "NULL"). Node.Tag reports that tag for a node so the
// validation engine never has to inspect Go runtime types.
//
// # Decoding
//
//	node, err := datatree.DecodeJSON([]byte(`{"name": "Ana", "age": 31}`))
//	if err != nil {
//	    return err
//	}
//	age, _ := node.Get("age") // integer node, Tag() == "integer"
//
// Values already decoded elsewhere convert with FromValue:
//
//	node, err := datatree.FromValue(map[string]any{"name": "Ana"})
package datatree
