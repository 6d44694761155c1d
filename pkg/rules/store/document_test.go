package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"nocartorio/jsonrules/pkg/rules/grammar"
)

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument("base", "name", "string", "age", "integer|nullable")
	if err != nil {
		t.Fatalf("NewDocument() error = %v, want nil", err)
	}

	if doc.Len() != 2 {
		t.Errorf("doc.Len() = %d, want 2", doc.Len())
	}

	if got := doc.Keys(); !reflect.DeepEqual(got, []string{"name", "age"}) {
		t.Errorf("doc.Keys() = %v, want [name age]", got)
	}

	field, ok := doc.Field("age")
	if !ok {
		t.Fatal("Field(age) returned false, want true")
	}
	if !field.Rules.Has(grammar.KindNullable) {
		t.Error("age rules missing nullable")
	}
	if doc.Checksum == "" {
		t.Error("doc.Checksum is empty")
	}
}

func TestNewDocument_Errors(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  string
	}{
		{name: "odd pairs", pairs: []string{"name"}, want: "odd number"},
		{name: "duplicate key", pairs: []string{"a", "string", "a", "integer"}, want: "duplicate key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocument("base", tt.pairs...)
			if err == nil {
				t.Fatal("NewDocument() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestDocument_References(t *testing.T) {
	doc := MustDocument("base",
		"address", "array|file,address",
		"billing", "file,address",
		"items", "array|file,item",
		"tag", "file",
		"name", "string",
	)

	got := doc.References()
	want := []string{"address", "item"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestDecodeDocument(t *testing.T) {
	data := []byte(`{
  "zeta": "string",
  "alpha": "integer|nullable",
  "address": "array|file,address"
}`)

	doc, err := DecodeDocument("base", data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v, want nil", err)
	}

	// Source order is kept, not sorted.
	if got := doc.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "address"}) {
		t.Errorf("Keys() = %v, want [zeta alpha address]", got)
	}

	field, _ := doc.Field("alpha")
	if field.Line != 3 {
		t.Errorf("alpha line = %d, want 3", field.Line)
	}
	if field.Rule != "integer|nullable" {
		t.Errorf("alpha rule = %q, want %q", field.Rule, "integer|nullable")
	}
	if len(doc.Checksum) != 64 {
		t.Errorf("checksum length = %d, want 64", len(doc.Checksum))
	}
}

func TestDecodeDocument_ValidJSON(t *testing.T) {
	longKey := strings.Repeat("k", 1100)

	tests := []struct {
		name     string
		data     string
		wantKey  string
		wantRule string
	}{
		{name: "escaped slash", data: `{"a": "text\/x"}`, wantKey: "a", wantRule: "text/x"},
		{name: "surrogate pair key", data: `{"x\ud83d\ude00": "text"}`, wantKey: "x\U0001F600", wantRule: "text"},
		{name: "long key", data: `{"` + longKey + `": "string"}`, wantKey: longKey, wantRule: "string"},
		{name: "tab indented", data: "{\n\t\"a\": \"string\"\n}", wantKey: "a", wantRule: "string"},
		{name: "unicode escape in rule", data: `{"a": "\u0073tring"}`, wantKey: "a", wantRule: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument("base", []byte(tt.data))
			if err != nil {
				t.Fatalf("DecodeDocument() error = %v, want nil", err)
			}
			field, ok := doc.Field(tt.wantKey)
			if !ok {
				t.Fatalf("Field(%q) missing, keys = %v", tt.wantKey, doc.Keys())
			}
			if field.Rule != tt.wantRule {
				t.Errorf("rule = %q, want %q", field.Rule, tt.wantRule)
			}
		})
	}
}

func TestDecodeDocument_Lines(t *testing.T) {
	data := []byte("{\"a\": \"string\",\n\n  \"b\":\n    \"integer\"}")

	doc, err := DecodeDocument("base", data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v, want nil", err)
	}
	a, _ := doc.Field("a")
	b, _ := doc.Field("b")
	if a.Line != 1 || b.Line != 3 {
		t.Errorf("lines = %d, %d, want 1, 3", a.Line, b.Line)
	}

	_, err = DecodeDocument("base", []byte("{\"a\": \"string\",\n\"a\": \"text\"}"))
	var decodeErr *RulesetDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *RulesetDecodeError", err)
	}
	if decodeErr.Line != 2 || !strings.Contains(decodeErr.Message, "first defined on line 1") {
		t.Errorf("duplicate key error = line %d %q, want line 2 naming line 1", decodeErr.Line, decodeErr.Message)
	}
}

func TestDecodeDocument_Empty(t *testing.T) {
	doc, err := DecodeDocument("empty", []byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v, want nil", err)
	}
	if doc.Len() != 0 {
		t.Errorf("doc.Len() = %d, want 0", doc.Len())
	}
}

func TestDecodeDocument_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "invalid json", data: `{"name": "string"`, want: "not valid JSON"},
		{name: "yaml only", data: "name: string\n", want: "not valid JSON"},
		{name: "top-level array", data: `["string"]`, want: "must be an object"},
		{name: "top-level string", data: `"string"`, want: "must be an object"},
		{name: "number rule", data: `{"age": 1}`, want: `rule for key "age" must be a string`},
		{name: "null rule", data: `{"age": null}`, want: "must be a string"},
		{name: "nested object rule", data: `{"addr": {"city": "string"}}`, want: "must be a string"},
		{name: "duplicate key", data: `{"a": "string", "a": "integer"}`, want: "duplicate key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument("base", []byte(tt.data))
			if err == nil {
				t.Fatal("DecodeDocument() error = nil, want error")
			}

			var decodeErr *RulesetDecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("error type = %T, want *RulesetDecodeError", err)
			}
			if decodeErr.Document != "base" {
				t.Errorf("decodeErr.Document = %q, want %q", decodeErr.Document, "base")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}
