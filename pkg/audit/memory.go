package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a MemoryStore.
const DefaultMaxEntries = 10000

// MemoryStore keeps history in memory. The oldest entries are evicted once
// MaxEntries is reached. All data is lost when the process exits.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []*Entry
	index      map[string]*Entry
	maxEntries int
	closed     bool
}

// NewMemoryStore creates a memory store holding at most maxEntries entries.
// maxEntries <= 0 selects DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		index:      make(map[string]*Entry),
		maxEntries: maxEntries,
	}
}

// Record stores a copy of entry.
func (m *MemoryStore) Record(_ context.Context, entry *Entry) error {
	if err := prepare(entry); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if len(m.entries) >= m.maxEntries {
		evicted := m.entries[0]
		m.entries = m.entries[1:]
		delete(m.index, evicted.ID)
	}

	stored := cloneEntry(entry)
	m.entries = append(m.entries, stored)
	m.index[stored.ID] = stored
	return nil
}

// Get returns a copy of the entry with the given ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.index[id]
	if !ok {
		return nil, nil
	}
	return cloneEntry(e), nil
}

// List returns matching entries, newest first.
func (m *MemoryStore) List(_ context.Context, q Query) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	var out []*Entry
	for _, e := range m.entries {
		if q.matches(e) {
			out = append(out, cloneEntry(e))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit := q.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Cleanup removes entries started before olderThan.
func (m *MemoryStore) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.StartedAt.Before(olderThan) {
			delete(m.index, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close drops all entries. Close is idempotent.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	m.index = make(map[string]*Entry)
	return nil
}

func cloneEntry(e *Entry) *Entry {
	c := *e
	c.Errors = append(c.Errors[:0:0], e.Errors...)
	return &c
}
