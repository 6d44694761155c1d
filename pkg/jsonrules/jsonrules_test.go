package jsonrules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"nocartorio/jsonrules/pkg/audit"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/datatree"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/rules/store"
	"nocartorio/jsonrules/pkg/telemetry/metrics"
)

// newMemoryValidator builds a validator for ruleset "person" whose
// documents live in memory as name.json.
func newMemoryValidator(t *testing.T, docs map[string]string, opts ...Option) *Validator {
	t.Helper()

	catalog := store.Catalog{"person": {}}
	contents := make(map[string]string, len(docs))
	for name, content := range docs {
		catalog["person"][name] = name + ".json"
		contents[name+".json"] = content
	}

	opts = append([]Option{
		WithConfig(config.Default()),
		WithCatalog(catalog),
		WithSource(store.NewMemorySource(contents)),
	}, opts...)

	v, err := New("person", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func mustDecode(t *testing.T, data string) datatree.Node {
	t.Helper()
	n, err := datatree.DecodeJSON([]byte(data))
	if err != nil {
		t.Fatalf("DecodeJSON(%s) error = %v", data, err)
	}
	return n
}

func TestValidator_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		docs       map[string]string
		data       string
		want       bool
		wantErrors []string
	}{
		{
			name: "text field passes",
			docs: map[string]string{"base": `{"name": "text"}`},
			data: `{"name": "Ana"}`,
			want: true,
		},
		{
			name:       "impossible date fails",
			docs:       map[string]string{"base": `{"birth": "date"}`},
			data:       `{"birth": "2024-02-30"}`,
			want:       false,
			wantErrors: []string{"Validation failed for field 'birth' with value '2024-02-30'"},
		},
		{
			name:       "presence checked before nullable",
			docs:       map[string]string{"base": `{"email": "text,nullable"}`},
			data:       `{}`,
			want:       false,
			wantErrors: []string{"Section 'email' not found!"},
		},
		{
			name: "nested document passes",
			docs: map[string]string{"base": `{"addr": "file,Addr"}`, "Addr": `{"city": "text"}`},
			data: `{"addr": {"city": "SP"}}`,
			want: true,
		},
		{
			name:       "nested document fails",
			docs:       map[string]string{"base": `{"addr": "file,Addr"}`, "Addr": `{"city": "text"}`},
			data:       `{"addr": {"city": 5}}`,
			want:       false,
			wantErrors: []string{"Validation failed for field 'addr.city' with value '5'"},
		},
		{
			name: "empty array of documents passes",
			docs: map[string]string{"base": `{"addrs": "file,Addr|array"}`, "Addr": `{"city": "text"}`},
			data: `{"addrs": []}`,
			want: true,
		},
		{
			name:       "array of documents reports invalid element",
			docs:       map[string]string{"base": `{"addrs": "file,Addr|array"}`, "Addr": `{"city": "text"}`},
			data:       `{"addrs": [{"city": "SP"}, {"city": 7}]}`,
			want:       false,
			wantErrors: []string{"Validation failed for field 'addrs[1].city' with value '7'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newMemoryValidator(t, tt.docs)

			if got := v.Validate(mustDecode(t, tt.data)); got != tt.want {
				t.Fatalf("Validate() = %v, want %v (errors: %v)", got, tt.want, v.Errors())
			}

			errs := v.Errors()
			if tt.want && len(errs) != 0 {
				t.Errorf("Errors() = %v, want none", errs)
			}
			if len(errs) != len(tt.wantErrors) {
				t.Fatalf("Errors() = %v, want %d records", errs, len(tt.wantErrors))
			}
			for i, want := range tt.wantErrors {
				if errs[i].Message != want {
					t.Errorf("Errors()[%d].Message = %q, want %q", i, errs[i].Message, want)
				}
			}
		})
	}
}

func TestValidator_ErrorsResetBetweenCalls(t *testing.T) {
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text"}`})

	if v.Validate(mustDecode(t, `{}`)) {
		t.Fatal("Validate({}) = true, want false")
	}
	if len(v.Errors()) != 1 {
		t.Fatalf("Errors() = %v, want 1 record", v.Errors())
	}

	if !v.Validate(mustDecode(t, `{"name": "Ana"}`)) {
		t.Fatal("Validate() = false, want true")
	}
	if errs := v.Errors(); len(errs) != 0 {
		t.Errorf("Errors() after passing call = %v, want none", errs)
	}
}

func TestValidator_Idempotent(t *testing.T) {
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text", "age": "integer"}`})
	data := mustDecode(t, `{"name": 1, "age": "x"}`)

	first := v.Validate(data)
	firstErrs := v.Errors()
	second := v.Validate(data)
	secondErrs := v.Errors()

	if first != second {
		t.Errorf("Validate() = %v then %v", first, second)
	}
	if len(firstErrs) != len(secondErrs) {
		t.Fatalf("Errors() lengths differ: %d vs %d", len(firstErrs), len(secondErrs))
	}
	for i := range firstErrs {
		if firstErrs[i] != secondErrs[i] {
			t.Errorf("Errors()[%d] = %v then %v", i, firstErrs[i], secondErrs[i])
		}
	}
}

func TestValidator_ErrorsIsSnapshot(t *testing.T) {
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text"}`})
	v.Validate(mustDecode(t, `{}`))

	errs := v.Errors()
	errs[0].Message = "changed"

	if v.Errors()[0].Message == "changed" {
		t.Error("Errors() exposed internal state")
	}
}

func TestValidator_PlainValues(t *testing.T) {
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text", "age": "integer"}`})

	data := map[string]any{"name": "Ana", "age": 30}
	if !v.Validate(data) {
		t.Errorf("Validate(map) = false, errors: %v", v.Errors())
	}
}

func TestNew_RulesetNotFound(t *testing.T) {
	_, err := New("missing",
		WithConfig(config.Default()),
		WithCatalog(store.Catalog{"person": {"base": "base.json"}}),
		WithSource(store.NewMemorySource(nil)),
	)

	var notFound *store.RulesetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("New() error = %v, want *store.RulesetNotFoundError", err)
	}
	if notFound.Ruleset != "missing" {
		t.Errorf("Ruleset = %q, want %q", notFound.Ruleset, "missing")
	}
}

func TestNew_DecodeError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `{"name": `},
		{name: "not an object", content: `["text"]`},
		{name: "non-string rule", content: `{"age": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("person",
				WithConfig(config.Default()),
				WithCatalog(store.Catalog{"person": {"base": "base.json"}}),
				WithSource(store.NewMemorySource(map[string]string{"base.json": tt.content})),
			)

			var decodeErr *store.RulesetDecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("New() error = %v, want *store.RulesetDecodeError", err)
			}
		})
	}
}

func TestNew_FromConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules", "base.json"), `{"name": "text", "addr": "file,Addr"}`)
	writeFile(t, filepath.Join(dir, "rules", "addr.json"), `{"city": "text"}`)
	writeFile(t, filepath.Join(dir, "jsonrules.yaml"), strings.Join([]string{
		"rules_dir: rules",
		"rulesets:",
		"  person:",
		"    base: base.json",
		"    Addr: addr.json",
	}, "\n"))

	cfg, err := config.LoadConfig(filepath.Join(dir, "jsonrules.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	v, err := New("person", WithConfig(cfg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer v.Close()

	if !v.Validate(mustDecode(t, `{"name": "Ana", "addr": {"city": "SP"}}`)) {
		t.Errorf("Validate() = false, errors: %v", v.Errors())
	}
	if got := len(v.Store().Paths()); got != 2 {
		t.Errorf("len(Store().Paths()) = %d, want 2", got)
	}
}

func TestNew_GlobalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Rulesets = map[string]map[string]string{"person": {"base": "base.json"}}
	config.SetConfig(cfg)
	defer config.SetConfig(nil)

	v, err := New("person", WithSource(store.NewMemorySource(map[string]string{
		"base.json": `{"name": "text"}`,
	})))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer v.Close()

	if v.Ruleset() != "person" {
		t.Errorf("Ruleset() = %q, want person", v.Ruleset())
	}
}

func TestNew_WithDocuments(t *testing.T) {
	v, err := New("person",
		WithDocuments(
			store.MustDocument("root", "addr", "file,Addr"),
			store.MustDocument("Addr", "city", "text"),
		),
		WithRootDocument("root"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !v.Validate(map[string]any{"addr": map[string]any{"city": "SP"}}) {
		t.Errorf("Validate() = false, errors: %v", v.Errors())
	}
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New("person", WithDocuments(store.MustDocument("other", "a", "text")))

	var rootErr *store.RootDocumentError
	if !errors.As(err, &rootErr) {
		t.Fatalf("New() error = %v, want *store.RootDocumentError", err)
	}
}

func TestValidator_StrictReferences(t *testing.T) {
	docs := map[string]string{"base": `{"addr": "file,Missing"}`}
	data := `{"addr": {"city": "SP"}}`

	tests := []struct {
		name     string
		strict   bool
		wantKind ruleerrors.Kind
	}{
		{name: "permissive", strict: false, wantKind: ruleerrors.KindMismatch},
		{name: "strict", strict: true, wantKind: ruleerrors.KindReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newMemoryValidator(t, docs, WithStrictReferences(tt.strict))
			result := v.Check(context.Background(), mustDecode(t, data))

			if result.OK {
				t.Fatal("Check().OK = true, want false")
			}
			if len(result.Errors) != 1 || result.Errors[0].Kind != tt.wantKind {
				t.Errorf("Check().Errors = %v, want one %s record", result.Errors, tt.wantKind)
			}
		})
	}
}

func TestValidator_MaxDepth(t *testing.T) {
	v := newMemoryValidator(t,
		map[string]string{"base": `{"child": "file,base|nullable"}`},
		WithMaxDepth(2),
	)

	data := mustDecode(t, `{"child": {"child": {"child": {"child": ""}}}}`)
	result := v.Check(context.Background(), data)

	if result.OK {
		t.Fatal("Check().OK = true, want false")
	}
	last := result.Errors[len(result.Errors)-1]
	if last.Kind != ruleerrors.KindRecursion {
		t.Errorf("last record kind = %s, want %s", last.Kind, ruleerrors.KindRecursion)
	}
}

func TestValidator_CheckConcurrent(t *testing.T) {
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text"}`})
	good := mustDecode(t, `{"name": "Ana"}`)
	bad := mustDecode(t, `{"name": 5}`)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if r := v.Check(context.Background(), good); !r.OK || len(r.Errors) != 0 {
					t.Errorf("Check(good) = %v / %v", r.OK, r.Errors)
				}
				return
			}
			if r := v.Check(context.Background(), bad); r.OK || len(r.Errors) != 1 {
				t.Errorf("Check(bad) = %v / %v", r.OK, r.Errors)
			}
		}(i)
	}
	wg.Wait()
}

func TestValidator_Audit(t *testing.T) {
	history := audit.NewMemoryStore(0)
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text"}`}, WithAudit(history))

	v.Validate(mustDecode(t, `{"name": "Ana"}`))
	result := v.Check(context.Background(), mustDecode(t, `{}`))

	entries, err := history.List(context.Background(), audit.Query{Ruleset: "person"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}

	var found bool
	for _, e := range entries {
		if e.RunID == result.RunID {
			found = true
			if e.OK || e.ErrorCount != 1 {
				t.Errorf("entry = %+v, want failing run with 1 error", e)
			}
		}
	}
	if !found {
		t.Errorf("run %s not recorded", result.RunID)
	}

	if err := v.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if history.Len() != 2 {
		t.Error("Close() closed a caller-owned audit store")
	}
}

func TestValidator_AuditFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Audit.Enabled = true
	cfg.Audit.Path = filepath.Join(t.TempDir(), "audit.db")

	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text"}`}, WithConfig(cfg))
	if v.Audit() == nil {
		t.Fatal("Audit() = nil, want store from config")
	}

	v.Validate(mustDecode(t, `{"name": "Ana"}`))

	entries, err := v.Audit().List(context.Background(), audit.Query{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || !entries[0].OK {
		t.Errorf("entries = %+v, want one passing run", entries)
	}
}

func TestValidator_Metrics(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, nil)
	v := newMemoryValidator(t, map[string]string{"base": `{"name": "text", "age": "integer"}`},
		WithMetrics(collector))

	v.Validate(mustDecode(t, `{"name": "Ana", "age": 3}`))
	v.Validate(mustDecode(t, `{"age": "x"}`))

	n, err := testutil.GatherAndCount(collector.Registry(), "test_validations_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("validations_total series = %d, want 2", n)
	}

	n, err = testutil.GatherAndCount(collector.Registry(), "test_ruleset_documents")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ruleset_documents series = %d, want 1", n)
	}
}

func TestValidator_Reload(t *testing.T) {
	src := store.NewMemorySource(map[string]string{"base.json": `{"name": "text"}`})
	v, err := New("person",
		WithConfig(config.Default()),
		WithCatalog(store.Catalog{"person": {"base": "base.json"}}),
		WithSource(src),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data := mustDecode(t, `{"name": "Ana"}`)
	if !v.Validate(data) {
		t.Fatal("Validate() before reload = false")
	}

	src.Set("base.json", `{"name": "integer"}`)
	if err := v.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if v.Validate(data) {
		t.Error("Validate() after reload = true, want false")
	}

	src.Set("base.json", `{"name": `)
	if err := v.Reload(); err == nil {
		t.Fatal("Reload() with broken document error = nil")
	}
	if v.Validate(data) {
		t.Error("Validate() after failed reload = true, want previous rules to stay active")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
