package audit

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/rules/engine"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStoreWithConfig(SQLiteConfig{
		DBPath:             filepath.Join(t.TempDir(), "audit.db"),
		CheckpointInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStoreWithConfig() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore(0)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, newTestSQLiteStore(t))
	})
}

func testEntry(ruleset string, ok bool, startedAt time.Time) *Entry {
	e := &Entry{
		RunID:     "run-" + ruleset,
		Ruleset:   ruleset,
		Root:      "base",
		Version:   "v1",
		OK:        ok,
		StartedAt: startedAt,
		Duration:  150 * time.Microsecond,
	}
	if !ok {
		e.Errors = []ruleerrors.Record{{
			Field:   "age",
			Message: "Validation failed for field 'age' with value 'x'",
			Kind:    ruleerrors.KindMismatch,
		}}
	}
	return e
}

func TestStore_RecordAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		started := time.Now().Add(-time.Minute)
		entry := testEntry("person", false, started)

		if err := s.Record(ctx, entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if entry.ID == "" {
			t.Fatal("Record() did not assign an ID")
		}

		got, err := s.Get(ctx, entry.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got == nil {
			t.Fatal("Get() = nil, want entry")
		}
		if got.Ruleset != "person" || got.OK || got.Version != "v1" {
			t.Errorf("Get() = %+v, want person/fail/v1", got)
		}
		if got.ErrorCount != 1 || len(got.Errors) != 1 {
			t.Fatalf("ErrorCount = %d, len(Errors) = %d, want 1, 1", got.ErrorCount, len(got.Errors))
		}
		if got.Errors[0].Kind != ruleerrors.KindMismatch || got.Errors[0].Field != "age" {
			t.Errorf("Errors[0] = %+v", got.Errors[0])
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
		}
		if got.Duration != 150*time.Microsecond {
			t.Errorf("Duration = %v, want 150µs", got.Duration)
		}
	})
}

func TestStore_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		got, err := s.Get(context.Background(), "nope")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("Get() = %+v, want nil", got)
		}
	})
}

func TestStore_RecordInvalid(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.Record(ctx, nil); err == nil {
			t.Error("Record(nil) error = nil, want error")
		}
		if err := s.Record(ctx, &Entry{}); err == nil {
			t.Error("Record(no ruleset) error = nil, want error")
		}
	})
}

func TestStore_List(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		entries := []*Entry{
			testEntry("person", true, base),
			testEntry("person", false, base.Add(time.Minute)),
			testEntry("orders", true, base.Add(2*time.Minute)),
			testEntry("person", true, base.Add(3*time.Minute)),
		}
		for _, e := range entries {
			if err := s.Record(ctx, e); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}

		tests := []struct {
			name  string
			query Query
			want  []string
		}{
			{
				name:  "all newest first",
				query: Query{},
				want:  []string{entries[3].ID, entries[2].ID, entries[1].ID, entries[0].ID},
			},
			{
				name:  "by ruleset",
				query: Query{Ruleset: "person"},
				want:  []string{entries[3].ID, entries[1].ID, entries[0].ID},
			},
			{
				name:  "failed only",
				query: Query{FailedOnly: true},
				want:  []string{entries[1].ID},
			},
			{
				name:  "limit",
				query: Query{Ruleset: "person", Limit: 2},
				want:  []string{entries[3].ID, entries[1].ID},
			},
			{
				name:  "since",
				query: Query{Since: base.Add(90 * time.Second)},
				want:  []string{entries[3].ID, entries[2].ID},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.List(ctx, tt.query)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("List() returned %d entries, want %d", len(got), len(tt.want))
				}
				for i, e := range got {
					if e.ID != tt.want[i] {
						t.Errorf("List()[%d].ID = %s, want %s", i, e.ID, tt.want[i])
					}
				}
			})
		}
	})
}

func TestStore_Cleanup(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		now := time.Now()

		old := testEntry("person", true, now.Add(-48*time.Hour))
		recent := testEntry("person", true, now.Add(-time.Minute))
		for _, e := range []*Entry{old, recent} {
			if err := s.Record(ctx, e); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}

		removed, err := s.Cleanup(ctx, now.Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
		if removed != 1 {
			t.Errorf("Cleanup() = %d, want 1", removed)
		}

		if got, _ := s.Get(ctx, old.ID); got != nil {
			t.Error("old entry still present after Cleanup()")
		}
		if got, _ := s.Get(ctx, recent.ID); got == nil {
			t.Error("recent entry removed by Cleanup()")
		}
	})
}

func TestStore_Closed(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}

		err := s.Record(context.Background(), testEntry("person", true, time.Now()))
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Record() after Close error = %v, want ErrClosed", err)
		}
	})
}

func TestStore_ConcurrentRecord(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if err := s.Record(ctx, testEntry("person", true, time.Now())); err != nil {
						t.Errorf("Record() error = %v", err)
					}
				}
			}()
		}
		wg.Wait()

		got, err := s.List(ctx, Query{Limit: 1000})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 100 {
			t.Errorf("List() returned %d entries, want 100", len(got))
		}
	})
}

func TestMemoryStore_Eviction(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()
	now := time.Now()

	first := testEntry("person", true, now)
	for _, e := range []*Entry{first, testEntry("person", true, now), testEntry("person", true, now)} {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got, _ := s.Get(ctx, first.ID); got != nil {
		t.Error("oldest entry was not evicted")
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	entry := testEntry("person", false, time.Now())
	if err := s.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.RunID != entry.RunID {
		t.Errorf("Get() after reopen = %+v, want run %s", got, entry.RunID)
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("NewSQLiteStore(\"\") error = nil, want error")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "memory", path: MemoryPath, want: "*audit.MemoryStore"},
		{name: "sqlite", path: filepath.Join(t.TempDir(), "a.db"), want: "*audit.SQLiteStore"},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(config.AuditConfig{Enabled: true, Path: tt.path})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()

			switch s.(type) {
			case *MemoryStore:
				if tt.want != "*audit.MemoryStore" {
					t.Errorf("Open() = MemoryStore, want %s", tt.want)
				}
			case *SQLiteStore:
				if tt.want != "*audit.SQLiteStore" {
					t.Errorf("Open() = SQLiteStore, want %s", tt.want)
				}
			}
		})
	}
}

func TestRecorder_Record(t *testing.T) {
	s := NewMemoryStore(0)
	r := NewRecorder(s, nil)

	result := &engine.Result{
		RunID:     "run-1",
		Ruleset:   "person",
		Root:      "base",
		OK:        false,
		StartedAt: time.Now(),
		Errors: []ruleerrors.Record{{
			Field:   "name",
			Message: "Section 'name' not found!",
			Kind:    ruleerrors.KindMissing,
		}},
	}

	if err := r.Record(context.Background(), result); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := s.List(context.Background(), Query{Ruleset: "person"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(got))
	}
	if got[0].RunID != "run-1" || got[0].ErrorCount != 1 {
		t.Errorf("entry = %+v, want run-1 with 1 error", got[0])
	}
	if r.Store() != s {
		t.Error("Store() did not return the underlying store")
	}
}

func TestRecorder_RecordClosedStore(t *testing.T) {
	s := NewMemoryStore(0)
	s.Close()
	r := NewRecorder(s, nil)

	err := r.Record(context.Background(), &engine.Result{Ruleset: "person"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Record() error = %v, want ErrClosed", err)
	}
}
