package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe in-memory index of loaded rule documents.
// Replace swaps the whole set atomically.
type Registry struct {
	mu       sync.RWMutex
	docs     map[string]*Document
	version  string
	loadTime time.Time
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		docs:     make(map[string]*Document),
		loadTime: time.Now(),
	}
	r.updateVersion()
	return r
}

// Register adds a document, replacing any document with the same name.
func (r *Registry) Register(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if doc.Name == "" {
		return fmt.Errorf("document name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[doc.Name] = doc
	r.updateVersion()
	return nil
}

// Replace atomically replaces the entire document set.
func (r *Registry) Replace(docs map[string]*Document) error {
	if docs == nil {
		return fmt.Errorf("documents cannot be nil")
	}

	next := make(map[string]*Document, len(docs))
	for name, doc := range docs {
		if doc == nil {
			return fmt.Errorf("document %q cannot be nil", name)
		}
		next[name] = doc
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = next
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// Get retrieves a document by name.
func (r *Registry) Get(name string) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[name]
	return doc, ok
}

// Has reports whether a document is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Snapshot returns a copy of the name -> document map.
func (r *Registry) Snapshot() map[string]*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Document, len(r.docs))
	for name, doc := range r.docs {
		out[name] = doc
	}
	return out
}

// View captures the current documents and their version under one lock.
func (r *Registry) View() *View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make(map[string]*Document, len(r.docs))
	for name, doc := range r.docs {
		docs[name] = doc
	}
	return &View{docs: docs, version: r.version}
}

// Names returns the sorted document names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.docs))
	for name := range r.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered documents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.docs)
}

// Version returns a short hash of the registered content. It changes
// whenever a document is added, removed or its content changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns when the document set was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// Stats returns statistics about the registered documents.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		DocumentCount: len(r.docs),
		LoadTime:      r.loadTime,
		Version:       r.version,
	}
	for _, doc := range r.docs {
		stats.FieldCount += doc.Len()
		stats.ReferenceCount += len(doc.References())
	}
	return stats
}

// updateVersion recomputes the version hash. Callers hold the write lock.
func (r *Registry) updateVersion() {
	r.version = contentVersion(r.docs)
}

// contentVersion hashes document names and checksums in name order.
func contentVersion(docs map[string]*Document) string {
	h := sha256.New()

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte(docs[name].Checksum))
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// RegistryStats contains statistics about a registry.
type RegistryStats struct {
	DocumentCount  int
	FieldCount     int
	ReferenceCount int
	LoadTime       time.Time
	Version        string
}
