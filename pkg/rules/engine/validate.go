package engine

import (
	"fmt"
	"strconv"
	"time"

	"nocartorio/jsonrules/pkg/datatree"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/grammar"
	"nocartorio/jsonrules/pkg/rules/store"
)

// Layouts accepted by the date and datetime constraints.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05"
)

// validateItems checks every field of doc against data in document order.
// It stops at the first field that fails; nested array elements are all
// visited before their field is reported as failed.
func (v *Validator) validateItems(c *collector, data datatree.Node, doc *store.Document, prefix string, depth int) bool {
	for _, field := range doc.Fields() {
		path := joinPath(prefix, field.Key)

		value, ok := data.Get(field.Key)
		if !ok {
			c.add(ruleerrors.Record{
				Field:      path,
				Message:    fmt.Sprintf("Section '%s' not found!", path),
				Kind:       ruleerrors.KindMissing,
				Document:   doc.Name,
				Suggestion: ruleerrors.SuggestKey(field.Key, data.Keys()),
			})
			return false
		}

		if !v.validateField(c, value, field, doc, path, depth) {
			return false
		}
	}
	return true
}

func (v *Validator) validateField(c *collector, value datatree.Node, field store.Field, doc *store.Document, path string, depth int) bool {
	rules := field.Rules

	if rules.Has(grammar.KindNullable) && value.IsEmpty() {
		return true
	}

	// file always forces structural validation of nested values.
	if !rules.Has(grammar.KindFile) && matchesTag(value, rules) {
		return true
	}

	if rules.HasAny(grammar.KindInteger, grammar.KindDouble, grammar.KindFloat) && value.IsNumeric() {
		return true
	}
	if rules.Has(grammar.KindDate) && isTime(value, DateLayout) {
		return true
	}
	if rules.Has(grammar.KindDatetime) && isTime(value, DatetimeLayout) {
		return true
	}
	if rules.Has(grammar.KindText) && value.Kind() == datatree.KindString {
		return true
	}

	if name, ok := rules.Param(grammar.KindFile); ok && name != "" {
		if handled, passed := v.validateNested(c, value, name, rules.Has(grammar.KindArray), path, depth); handled {
			return passed
		}
	}

	c.add(mismatch(path, doc.Name, value))
	return false
}

// validateNested applies the named document to value. handled is false
// when the value never reached the nested document, in which case the
// caller reports a plain mismatch.
func (v *Validator) validateNested(c *collector, value datatree.Node, name string, asArray bool, path string, depth int) (handled, passed bool) {
	nested, ok := c.docs.Resolve(name)
	if !ok {
		if !v.opts.StrictReferences {
			return false, false
		}
		c.add(ruleerrors.Record{
			Field:    path,
			Message:  fmt.Sprintf("Rule document '%s' referenced by field '%s' not found", name, path),
			Kind:     ruleerrors.KindReference,
			Document: name,
		})
		return true, false
	}

	if depth+1 > v.opts.MaxDepth {
		c.add(ruleerrors.Record{
			Field:    path,
			Message:  fmt.Sprintf("Recursion limit of %d exceeded at field '%s'", v.opts.MaxDepth, path),
			Kind:     ruleerrors.KindRecursion,
			Document: name,
		})
		return true, false
	}

	if !asArray {
		if !value.IsObject() {
			return false, false
		}
		return true, v.validateItems(c, value, nested, path, depth+1)
	}

	if !value.IsArray() {
		return false, false
	}

	passed = true
	for i, item := range value.Items() {
		itemPath := path + "[" + strconv.Itoa(i) + "]"
		if !item.IsObject() {
			c.add(mismatch(itemPath, name, item))
			passed = false
			continue
		}
		if !v.validateItems(c, item, nested, itemPath, depth+1) {
			passed = false
		}
	}
	return true, passed
}

// matchesTag reports whether any constraint names the value's kind.
func matchesTag(value datatree.Node, rules grammar.RuleSet) bool {
	for _, c := range rules.Constraints() {
		if value.Matches(c.Name) {
			return true
		}
	}
	return false
}

// isTime reports whether value is a string in layout that formats back to
// itself, rejecting dates such as 2024-02-30.
func isTime(value datatree.Node, layout string) bool {
	s, ok := value.AsString()
	if !ok {
		return false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return false
	}
	return t.Format(layout) == s
}

func mismatch(path, document string, value datatree.Node) ruleerrors.Record {
	return ruleerrors.Record{
		Field:    path,
		Message:  fmt.Sprintf("Validation failed for field '%s' with value '%s'", path, value.String()),
		Kind:     ruleerrors.KindMismatch,
		Document: document,
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
