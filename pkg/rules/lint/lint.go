package lint

import (
	"fmt"
	"sort"
	"strings"

	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/grammar"
	"nocartorio/jsonrules/pkg/rules/store"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a ruleset.
type Issue struct {
	Severity   Severity `json:"severity"`
	Document   string   `json:"document"`
	Field      string   `json:"field,omitempty"`
	Line       int      `json:"line,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// String formats the issue as "document:line: field: message".
func (i Issue) String() string {
	var sb strings.Builder
	sb.WriteString(i.Document)
	if i.Line > 0 {
		sb.WriteString(fmt.Sprintf(":%d", i.Line))
	}
	sb.WriteString(": ")
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	if i.Suggestion != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", i.Suggestion))
	}
	return sb.String()
}

// Report collects the issues found in one ruleset.
type Report struct {
	Ruleset string  `json:"ruleset,omitempty"`
	Root    string  `json:"root"`
	Issues  []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// LintStore lints the documents currently loaded in s.
func LintStore(s *store.Store) *Report {
	report := Lint(s.Documents(), s.RootName())
	report.Ruleset = s.Ruleset()
	return report
}

// Lint inspects a ruleset's documents for mistakes the engine would
// silently tolerate: unknown constraint names, ignored parameters, dangling
// or cyclic file references and documents the root never reaches.
func Lint(docs map[string]*store.Document, root string) *Report {
	if root == "" {
		root = store.DefaultRootDocument
	}
	report := &Report{Root: root, Issues: make([]Issue, 0)}

	if _, ok := docs[root]; !ok {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityError,
			Document: root,
			Message:  fmt.Sprintf("root document %q is missing", root),
		})
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, field := range docs[name].Fields() {
			report.Issues = append(report.Issues, lintField(name, field, docs)...)
		}
	}

	report.Issues = append(report.Issues, findCycles(names, docs)...)
	report.Issues = append(report.Issues, findUnreachable(root, names, docs)...)

	return report
}

func lintField(docName string, field store.Field, docs map[string]*store.Document) []Issue {
	var issues []Issue
	warn := func(msg, suggestion string) {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Document:   docName,
			Field:      field.Key,
			Line:       field.Line,
			Message:    msg,
			Suggestion: suggestion,
		})
	}

	for _, c := range field.Rules.Constraints() {
		switch {
		case c.Name == "":
			warn(fmt.Sprintf("empty constraint in rule %q", field.Rule), "")

		case c.Kind == grammar.KindUnknown:
			warn(fmt.Sprintf("unknown constraint %q never matches", c.Name),
				ruleerrors.SuggestConstraint(c.Name, grammar.KnownNames()))

		case c.Kind == grammar.KindFile:
			if c.Param == "" {
				warn("file constraint has no document name", "Use file,<document>")
			} else if _, ok := docs[c.Param]; !ok {
				warn(fmt.Sprintf("file references unknown document %q", c.Param), "")
			}

		case c.HasParam():
			// "text,nullable" reads as text with an ignored parameter.
			suggestion := ""
			if grammar.KindOf(c.Param) != grammar.KindUnknown {
				suggestion = fmt.Sprintf("Did you mean '%s|%s'?", c.Name, c.Param)
			}
			warn(fmt.Sprintf("constraint %q ignores parameter %q", c.Name, c.Param), suggestion)
		}
	}

	return issues
}

// findCycles reports file reference cycles. A cycle is legal, since data
// depth bounds the recursion, but usually unintended.
func findCycles(names []string, docs map[string]*store.Document) []Issue {
	var issues []Issue
	visited := make(map[string]bool)
	inProgress := make(map[string]bool)
	reported := make(map[string]bool)

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		visited[name] = true
		inProgress[name] = true
		path = append(path, name)

		doc, ok := docs[name]
		if ok {
			for _, ref := range doc.References() {
				if inProgress[ref] {
					cycle := append(append([]string{}, path[indexOf(path, ref):]...), ref)
					key := strings.Join(cycle, "->")
					if !reported[key] {
						reported[key] = true
						issues = append(issues, Issue{
							Severity: SeverityWarning,
							Document: name,
							Message:  "reference cycle: " + strings.Join(cycle, " -> "),
						})
					}
					continue
				}
				if !visited[ref] {
					visit(ref, path)
				}
			}
		}

		inProgress[name] = false
	}

	for _, name := range names {
		if !visited[name] {
			visit(name, nil)
		}
	}
	return issues
}

func findUnreachable(root string, names []string, docs map[string]*store.Document) []Issue {
	if _, ok := docs[root]; !ok {
		return nil
	}

	reached := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		doc, ok := docs[name]
		if !ok {
			continue
		}
		for _, ref := range doc.References() {
			if !reached[ref] {
				reached[ref] = true
				queue = append(queue, ref)
			}
		}
	}

	var issues []Issue
	for _, name := range names {
		if !reached[name] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Document: name,
				Message:  fmt.Sprintf("document is not reachable from root %q", root),
			})
		}
	}
	return issues
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}
