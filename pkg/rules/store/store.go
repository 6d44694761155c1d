package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultRootDocument is the entry-point document name of a ruleset.
const DefaultRootDocument = "base"

// Store owns the documents of one loaded ruleset for the lifetime of a
// validator. Lookups are safe for concurrent use; Reload swaps the document
// set atomically and keeps the previous set when loading fails.
type Store struct {
	ruleset  string
	root     string
	loader   *Loader
	registry *Registry
	logger   *slog.Logger

	// Serializes reloads
	reloadMu      sync.Mutex
	lastReload    time.Time
	lastReloadErr error
	listeners     []func(ReloadEvent)
}

// ReloadEvent describes the outcome of one reload.
type ReloadEvent struct {
	Ruleset   string
	Version   string
	Documents int
	Duration  time.Duration
	Err       error
}

// Open loads a ruleset and returns a store serving its documents. root
// names the entry-point document; empty means DefaultRootDocument.
//
// Open returns *RulesetNotFoundError when the catalog has no documents for
// the ruleset, *RulesetDecodeError when a document is malformed, *LoadError
// on read failures and *RootDocumentError when the root is missing.
func Open(ruleset, root string, loader *Loader, logger *slog.Logger) (*Store, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if root == "" {
		root = DefaultRootDocument
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		ruleset:  ruleset,
		root:     root,
		loader:   loader,
		registry: NewRegistry(),
		logger:   logger.With("component", "rules.store", "ruleset", ruleset),
	}

	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := s.registry.Replace(docs); err != nil {
		return nil, err
	}

	s.logger.Info("Ruleset opened",
		"documents", len(docs),
		"root", root,
		"version", s.registry.Version(),
	)

	return s, nil
}

// NewStatic creates a store over documents built in code, bypassing any
// loader. Reload on a static store is a no-op.
func NewStatic(ruleset, root string, docs ...*Document) (*Store, error) {
	if root == "" {
		root = DefaultRootDocument
	}

	set := make(map[string]*Document, len(docs))
	for _, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("document cannot be nil")
		}
		set[doc.Name] = doc
	}
	if _, ok := set[root]; !ok {
		return nil, &RootDocumentError{Ruleset: ruleset, Document: root}
	}

	s := &Store{
		ruleset:  ruleset,
		root:     root,
		registry: NewRegistry(),
		logger:   slog.Default().With("component", "rules.store", "ruleset", ruleset),
	}
	if err := s.registry.Replace(set); err != nil {
		return nil, err
	}
	return s, nil
}

// Ruleset returns the ruleset name.
func (s *Store) Ruleset() string {
	return s.ruleset
}

// RootName returns the entry-point document name.
func (s *Store) RootName() string {
	return s.root
}

// Root returns the entry-point document.
func (s *Store) Root() (*Document, bool) {
	return s.registry.Get(s.root)
}

// Resolve returns the named document. An absent document is reported with
// ok == false, not as an error.
func (s *Store) Resolve(name string) (*Document, bool) {
	return s.registry.Get(name)
}

// Documents returns a snapshot of all loaded documents.
func (s *Store) Documents() map[string]*Document {
	return s.registry.Snapshot()
}

// View returns the loaded documents as one consistent set. Validation
// runs resolve through a view so a concurrent reload cannot mix versions.
func (s *Store) View() *View {
	return s.registry.View()
}

// Names returns the sorted document names.
func (s *Store) Names() []string {
	return s.registry.Names()
}

// Version returns the content version of the loaded documents.
func (s *Store) Version() string {
	return s.registry.Version()
}

// Stats returns registry statistics.
func (s *Store) Stats() RegistryStats {
	return s.registry.Stats()
}

// Paths returns the file paths backing the ruleset, if file based.
func (s *Store) Paths() []string {
	if s.loader == nil {
		return nil
	}
	return s.loader.Paths(s.ruleset)
}

// OnReload registers a callback invoked after every reload attempt.
func (s *Store) OnReload(fn func(ReloadEvent)) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads every document of the ruleset. On failure the previous
// documents stay active and the error is returned.
func (s *Store) Reload() error {
	if s.loader == nil {
		return nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	docs, err := s.load()
	if err == nil {
		err = s.registry.Replace(docs)
	}

	event := ReloadEvent{
		Ruleset:   s.ruleset,
		Version:   s.registry.Version(),
		Documents: s.registry.Count(),
		Duration:  time.Since(start),
		Err:       err,
	}
	s.lastReload = time.Now()
	s.lastReloadErr = err

	if err != nil {
		s.logger.Error("Ruleset reload failed, keeping previous documents",
			"error", err,
			"version", event.Version,
			"duration_ms", event.Duration.Milliseconds(),
		)
	} else {
		s.logger.Info("Ruleset reloaded",
			"documents", event.Documents,
			"version", event.Version,
			"duration_ms", event.Duration.Milliseconds(),
		)
	}

	for _, fn := range s.listeners {
		fn(event)
	}

	return err
}

// LastReload returns the time and outcome of the most recent reload.
func (s *Store) LastReload() (time.Time, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.lastReload, s.lastReloadErr
}

func (s *Store) load() (map[string]*Document, error) {
	docs, err := s.loader.LoadRuleset(s.ruleset)
	if err != nil {
		return nil, err
	}
	if _, ok := docs[s.root]; !ok {
		return nil, &RootDocumentError{Ruleset: s.ruleset, Document: s.root}
	}
	return docs, nil
}
