package datatree

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Kind tags as they appear in rule strings. Objects and arrays share the
// "array" tag: rule documents written against decoded JSON never told the
// two apart.
const (
	TagNull    = "NULL"
	TagBoolean = "boolean"
	TagInteger = "integer"
	TagDouble  = "double"
	TagString  = "string"
	TagArray   = "array"
)

// Node is one value of a decoded data tree. The zero value is null.
type Node struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	items  []Node
	fields map[string]Node
}

// Null returns a null node.
func Null() Node { return Node{} }

// Bool returns a boolean node.
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }

// Int returns an integer node.
func Int(v int64) Node { return Node{kind: KindInteger, i: v} }

// Float returns a floating point node.
func Float(v float64) Node { return Node{kind: KindFloat, f: v} }

// Str returns a string node.
func Str(v string) Node { return Node{kind: KindString, s: v} }

// Array returns an array node holding items.
func Array(items ...Node) Node {
	if items == nil {
		items = []Node{}
	}
	return Node{kind: KindArray, items: items}
}

// Object returns an object node holding fields.
func Object(fields map[string]Node) Node {
	if fields == nil {
		fields = map[string]Node{}
	}
	return Node{kind: KindObject, fields: fields}
}

// Kind returns the node's variant.
func (n Node) Kind() Kind { return n.kind }

// IsObject reports whether the node is an object.
func (n Node) IsObject() bool { return n.kind == KindObject }

// IsArray reports whether the node is an array.
func (n Node) IsArray() bool { return n.kind == KindArray }

// AsString returns the string payload and whether the node is a string.
func (n Node) AsString() (string, bool) {
	return n.s, n.kind == KindString
}

// AsBool returns the boolean payload and whether the node is a boolean.
func (n Node) AsBool() (bool, bool) {
	return n.b, n.kind == KindBool
}

// AsInt returns the integer payload and whether the node is an integer.
func (n Node) AsInt() (int64, bool) {
	return n.i, n.kind == KindInteger
}

// AsFloat returns the float payload and whether the node is a float.
func (n Node) AsFloat() (float64, bool) {
	return n.f, n.kind == KindFloat
}

// Items returns the elements of an array node, nil for any other kind.
func (n Node) Items() []Node {
	if n.kind != KindArray {
		return nil
	}
	return n.items
}

// Len returns the number of elements or fields; zero for scalars.
func (n Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.items)
	case KindObject:
		return len(n.fields)
	default:
		return 0
	}
}

// Get looks up a field of an object node.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Has reports whether an object node contains key.
func (n Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Keys returns the sorted field names of an object node.
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tag returns the kind tag rule strings use to name this node's type.
func (n Node) Tag() string {
	switch n.kind {
	case KindNull:
		return TagNull
	case KindBool:
		return TagBoolean
	case KindInteger:
		return TagInteger
	case KindFloat:
		return TagDouble
	case KindString:
		return TagString
	default:
		return TagArray
	}
}

// Matches reports whether a constraint name is exactly this node's kind
// tag. Other spellings ("int", "bool", "null") never match.
func (n Node) Matches(name string) bool {
	return name == n.Tag()
}

// IsEmpty reports whether the node holds an empty value: null, false, zero,
// "", "0" or a container without entries.
func (n Node) IsEmpty() bool {
	switch n.kind {
	case KindNull:
		return true
	case KindBool:
		return !n.b
	case KindInteger:
		return n.i == 0
	case KindFloat:
		return n.f == 0
	case KindString:
		return n.s == "" || n.s == "0"
	case KindArray:
		return len(n.items) == 0
	case KindObject:
		return len(n.fields) == 0
	}
	return false
}

var numericPattern = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?[ \t\n\r\v\f]*$`)

// IsNumeric reports whether the node is a number or a string holding a
// decimal number.
func (n Node) IsNumeric() bool {
	switch n.kind {
	case KindInteger, KindFloat:
		return true
	case KindString:
		return numericPattern.MatchString(n.s)
	}
	return false
}

// Value converts the node back into plain Go values: nil, bool, int64,
// float64, string, []any and map[string]any.
func (n Node) Value() any {
	switch n.kind {
	case KindBool:
		return n.b
	case KindInteger:
		return n.i
	case KindFloat:
		return n.f
	case KindString:
		return n.s
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Value()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.fields))
		for k, v := range n.fields {
			out[k] = v.Value()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the node as JSON.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(n.Value()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// String renders the node for diagnostics: strings as-is, everything else
// as compact JSON.
func (n Node) String() string {
	switch n.kind {
	case KindString:
		return n.s
	case KindInteger:
		return strconv.FormatInt(n.i, 10)
	}
	data, err := n.MarshalJSON()
	if err != nil {
		return n.kind.String()
	}
	return string(data)
}
