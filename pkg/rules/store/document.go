package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"nocartorio/jsonrules/pkg/rules/grammar"
)

// Field is one entry of a rule document: a data key and its compiled rule.
type Field struct {
	Key   string          // Data key the rule applies to
	Rule  string          // Raw rule string as written
	Rules grammar.RuleSet // Compiled form of Rule
	Line  int             // Source line of the key (1-based, 0 if unknown)
}

// Document is a named, immutable mapping from field key to rule string.
// Fields keep the order in which keys appear in the source object.
type Document struct {
	Name     string
	Location string
	Checksum string
	fields   []Field
	index    map[string]int
}

// NewDocument builds a document from ordered key/rule pairs. It is mainly
// useful for tests and for rule sets assembled in code.
func NewDocument(name string, pairs ...string) (*Document, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("document %q: odd number of key/rule arguments", name)
	}

	doc := &Document{Name: name, index: make(map[string]int, len(pairs)/2)}
	h := sha256.New()
	for i := 0; i < len(pairs); i += 2 {
		key, rule := pairs[i], pairs[i+1]
		if _, dup := doc.index[key]; dup {
			return nil, fmt.Errorf("document %q: duplicate key %q", name, key)
		}
		doc.index[key] = len(doc.fields)
		doc.fields = append(doc.fields, Field{Key: key, Rule: rule, Rules: grammar.Parse(rule)})
		h.Write([]byte(key))
		h.Write([]byte{0})
		h.Write([]byte(rule))
		h.Write([]byte{0})
	}
	doc.Checksum = fmt.Sprintf("%x", h.Sum(nil))

	return doc, nil
}

// MustDocument is like NewDocument but panics on error.
func MustDocument(name string, pairs ...string) *Document {
	doc, err := NewDocument(name, pairs...)
	if err != nil {
		panic(err)
	}
	return doc
}

// Fields returns the document's fields in source order.
func (d *Document) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// Field looks up a field by key.
func (d *Document) Field(key string) (Field, bool) {
	i, ok := d.index[key]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

// Keys returns the field keys in source order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.Key
	}
	return keys
}

// References returns the names of documents referenced through file
// constraints, in field order, without duplicates.
func (d *Document) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, f := range d.fields {
		if name, ok := f.Rules.Param(grammar.KindFile); ok && name != "" && !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}
	return refs
}

// DecodeDocument parses raw rule-document content. The content must be a JSON
// object whose values are all strings. Key order is preserved.
func DecodeDocument(name string, data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, &RulesetDecodeError{
			Document: name,
			Message:  "content is not valid JSON",
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	lineAt := func() int {
		return 1 + bytes.Count(data[:dec.InputOffset()], []byte("\n"))
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, &RulesetDecodeError{Document: name, Message: "content could not be parsed", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &RulesetDecodeError{
			Document: name,
			Line:     1,
			Message:  "top-level value must be an object",
		}
	}

	var (
		pairs []string
		lines []int
		seen  = make(map[string]int)
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &RulesetDecodeError{Document: name, Line: lineAt(), Message: "content could not be parsed", Cause: err}
		}
		key, _ := tok.(string)
		keyLine := lineAt()

		if first, dup := seen[key]; dup {
			return nil, &RulesetDecodeError{
				Document: name,
				Line:     keyLine,
				Message:  fmt.Sprintf("duplicate key %q (first defined on line %d)", key, first),
			}
		}
		seen[key] = keyLine

		tok, err = dec.Token()
		if err != nil {
			return nil, &RulesetDecodeError{Document: name, Line: lineAt(), Message: "content could not be parsed", Cause: err}
		}
		rule, ok := tok.(string)
		if !ok {
			return nil, &RulesetDecodeError{
				Document: name,
				Line:     lineAt(),
				Message:  fmt.Sprintf("rule for key %q must be a string", key),
			}
		}

		pairs = append(pairs, key, rule)
		lines = append(lines, keyLine)
	}

	doc, err := NewDocument(name, pairs...)
	if err != nil {
		return nil, &RulesetDecodeError{Document: name, Message: err.Error()}
	}

	for i, line := range lines {
		doc.fields[i].Line = line
	}
	sum := sha256.Sum256(data)
	doc.Checksum = fmt.Sprintf("%x", sum)

	return doc, nil
}
