package store

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWatcher_RequiresFiles(t *testing.T) {
	s, err := NewStatic("inline", "", MustDocument("base"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewWatcher(s, 0, nil); err == nil {
		t.Error("NewWatcher(static store) error = nil, want error")
	}
	if _, err := NewWatcher(nil, 0, nil); err == nil {
		t.Error("NewWatcher(nil) error = nil, want error")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	if err := os.WriteFile(basePath, []byte(`{"name": "string"}`), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(Catalog{"orders": {"base": "base.json"}}, NewFileSource(dir), nil, nil)
	s, err := Open("orders", "", loader, nil)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	var reloads atomic.Int32
	s.OnReload(func(ReloadEvent) { reloads.Add(1) })

	w, err := NewWatcher(s, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// Give the watcher time to subscribe.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(basePath, []byte(`{"name": "string", "age": "integer"}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if root, _ := s.Root(); root.Len() == 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if root, _ := s.Root(); root.Len() != 2 {
		t.Errorf("root fields = %d after change, want 2", root.Len())
	}
	if reloads.Load() == 0 {
		t.Error("no reload observed")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v, want nil", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callback calls = %d, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(80 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callback calls = %d after Stop, want 0", got)
	}
}
