package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nocartorio/jsonrules/pkg/rules/store"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{
			name:   "no checks",
			checks: nil,
			want:   StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("down") },
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			got := c.CheckReadiness(context.Background())
			if got.Status != tt.want {
				t.Errorf("CheckReadiness().Status = %q, want %q", got.Status, tt.want)
			}
			if len(got.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(got.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	got := c.CheckReadiness(context.Background())
	if got.Status != StatusDegraded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusDegraded)
	}
	if msg := got.Checks["slow"].Message; msg != ErrCheckTimeout.Error() {
		t.Errorf("Message = %q, want %q", msg, ErrCheckTimeout.Error())
	}
}

func TestChecker_RegisterUnregister(t *testing.T) {
	c := New(0)
	c.RegisterCheck("b", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })

	if got := c.ListChecks(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ListChecks() = %v, want [a b]", got)
	}

	c.UnregisterCheck("a")
	if got := c.ListChecks(); len(got) != 1 || got[0] != "b" {
		t.Errorf("ListChecks() after unregister = %v, want [b]", got)
	}
}

func TestRulesetCheck(t *testing.T) {
	src := store.NewMemorySource(map[string]string{"base.json": `{"id": "integer"}`})
	loader := store.NewLoader(store.Catalog{"orders": {"base": "base.json"}}, src, nil, nil)

	s, err := store.Open("orders", "", loader, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	check := RulesetCheck(s)
	if err := check(context.Background()); err != nil {
		t.Fatalf("check() on fresh store error = %v", err)
	}

	src.Set("base.json", `{"id": `)
	if err := s.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want decode error")
	}
	if err := check(context.Background()); err == nil {
		t.Error("check() after failed reload error = nil, want error")
	}

	src.Set("base.json", `{"id": "integer"}`)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if err := check(context.Background()); err != nil {
		t.Errorf("check() after recovery error = %v", err)
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("down", func(context.Context) error { return errors.New("down") })

	mux := http.NewServeMux()
	Register(mux, c, "1.2.3", "abc", "2026-01-01")

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{name: "liveness", method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK},
		{name: "liveness head", method: http.MethodHead, path: "/healthz", wantCode: http.StatusOK},
		{name: "liveness post", method: http.MethodPost, path: "/healthz", wantCode: http.StatusMethodNotAllowed},
		{name: "readiness degraded", method: http.MethodGet, path: "/readyz", wantCode: http.StatusServiceUnavailable},
		{name: "version", method: http.MethodGet, path: "/version", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantCode)
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc" {
		t.Errorf("VersionInfo = %+v, want 1.2.3/abc", info)
	}
}
