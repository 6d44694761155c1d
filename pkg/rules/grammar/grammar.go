package grammar

import "strings"

// Separators of the rule string wire format.
const (
	TokenSeparator = "|"
	ParamSeparator = ","
)

// Kind identifies a constraint recognized by the validation engine.
type Kind int

const (
	KindUnknown Kind = iota
	KindNullable
	KindInteger
	KindDouble
	KindFloat
	KindDate
	KindDatetime
	KindText
	KindFile
	KindArray
	KindBoolean
	KindString
	KindNull
	KindObject
)

var kindNames = map[string]Kind{
	"nullable": KindNullable,
	"integer":  KindInteger,
	"double":   KindDouble,
	"float":    KindFloat,
	"date":     KindDate,
	"datetime": KindDatetime,
	"text":     KindText,
	"file":     KindFile,
	"array":    KindArray,
	"boolean":  KindBoolean,
	"string":   KindString,
	"NULL":     KindNull,
	"object":   KindObject,
}

// KindOf returns the kind a constraint name denotes, KindUnknown if none.
func KindOf(name string) Kind {
	return kindNames[name]
}

// KnownNames returns every constraint name the engine understands.
func KnownNames() []string {
	return []string{
		"nullable", "integer", "double", "float", "date", "datetime",
		"text", "file", "array", "boolean", "string", "NULL", "object",
	}
}

// String returns the canonical constraint name of the kind.
func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Constraint is one token of a rule string.
type Constraint struct {
	Kind  Kind
	Name  string // name as written
	Param string // parameter after the first comma, "" if absent
}

// HasParam reports whether the constraint was written as name,param.
func (c Constraint) HasParam() bool {
	return c.Param != ""
}

// String renders the constraint in wire format.
func (c Constraint) String() string {
	if c.Param == "" {
		return c.Name
	}
	return c.Name + ParamSeparator + c.Param
}

// RuleSet is the parsed form of one field's rule string. Constraint names are
// unique; order follows first appearance in the rule string.
type RuleSet struct {
	constraints []Constraint
	index       map[string]int
}

// Parse splits a rule string into its constraints. Parsing is purely
// syntactic and never fails: unknown names are kept with KindUnknown, and
// only the first parameter segment of a token is retained. When a name
// repeats, the later parameter wins.
func Parse(rule string) RuleSet {
	tokens := strings.Split(rule, TokenSeparator)
	rs := RuleSet{
		constraints: make([]Constraint, 0, len(tokens)),
		index:       make(map[string]int, len(tokens)),
	}

	for _, token := range tokens {
		name, param, _ := strings.Cut(token, ParamSeparator)
		if i := strings.Index(param, ParamSeparator); i >= 0 {
			param = param[:i]
		}

		c := Constraint{Kind: KindOf(name), Name: name, Param: param}
		if pos, ok := rs.index[name]; ok {
			rs.constraints[pos] = c
			continue
		}
		rs.index[name] = len(rs.constraints)
		rs.constraints = append(rs.constraints, c)
	}

	return rs
}

// Len returns the number of distinct constraints.
func (rs RuleSet) Len() int {
	return len(rs.constraints)
}

// Constraints returns the constraints in rule-string order.
func (rs RuleSet) Constraints() []Constraint {
	out := make([]Constraint, len(rs.constraints))
	copy(out, rs.constraints)
	return out
}

// HasName reports whether a constraint with exactly this name is present.
func (rs RuleSet) HasName(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Lookup returns the constraint with the given name.
func (rs RuleSet) Lookup(name string) (Constraint, bool) {
	pos, ok := rs.index[name]
	if !ok {
		return Constraint{}, false
	}
	return rs.constraints[pos], true
}

// Has reports whether a constraint of the given kind is present.
func (rs RuleSet) Has(kind Kind) bool {
	_, ok := rs.find(kind)
	return ok
}

// HasAny reports whether any of the given kinds is present.
func (rs RuleSet) HasAny(kinds ...Kind) bool {
	for _, k := range kinds {
		if rs.Has(k) {
			return true
		}
	}
	return false
}

// Param returns the parameter of the constraint of the given kind.
func (rs RuleSet) Param(kind Kind) (string, bool) {
	c, ok := rs.find(kind)
	if !ok {
		return "", false
	}
	return c.Param, true
}

// Unknown returns the constraints the engine does not understand.
func (rs RuleSet) Unknown() []Constraint {
	var out []Constraint
	for _, c := range rs.constraints {
		if c.Kind == KindUnknown {
			out = append(out, c)
		}
	}
	return out
}

// String re-renders the rule set in wire format.
func (rs RuleSet) String() string {
	parts := make([]string, len(rs.constraints))
	for i, c := range rs.constraints {
		parts[i] = c.String()
	}
	return strings.Join(parts, TokenSeparator)
}

func (rs RuleSet) find(kind Kind) (Constraint, bool) {
	for _, c := range rs.constraints {
		if c.Kind == kind {
			return c, true
		}
	}
	return Constraint{}, false
}
