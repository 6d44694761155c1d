package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Source reads raw rule-document content from a location.
type Source interface {
	Read(location string) ([]byte, error)
}

// Catalog maps ruleset names to their documents' source locations:
// ruleset -> document name -> location.
type Catalog map[string]map[string]string

// Documents returns the document locations of a ruleset.
func (c Catalog) Documents(ruleset string) (map[string]string, bool) {
	docs, ok := c[ruleset]
	if !ok || len(docs) == 0 {
		return nil, false
	}
	return docs, true
}

// Rulesets returns the sorted ruleset names.
func (c Catalog) Rulesets() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileSource reads rule documents from the local file system. Relative
// locations are resolved against BaseDir.
type FileSource struct {
	BaseDir string
}

// NewFileSource creates a file source rooted at baseDir.
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{BaseDir: baseDir}
}

// Path returns the file system path a location resolves to.
func (s *FileSource) Path(location string) string {
	if filepath.IsAbs(location) || s.BaseDir == "" {
		return filepath.Clean(location)
	}
	return filepath.Join(s.BaseDir, location)
}

// Read reads the document at location.
func (s *FileSource) Read(location string) ([]byte, error) {
	path := s.Path(location)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %w", err)
		}
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	return os.ReadFile(path)
}

// FSSource reads rule documents from an fs.FS, e.g. an embed.FS.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source backed by fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Read reads the document at location.
func (s *FSSource) Read(location string) ([]byte, error) {
	return fs.ReadFile(s.fsys, location)
}

// ErrDocumentNotFound is returned by MemorySource for unknown locations.
var ErrDocumentNotFound = errors.New("document not found")

// MemorySource is an in-memory document source for tests and embedding.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySource creates a memory source from location -> content pairs.
func NewMemorySource(docs map[string]string) *MemorySource {
	s := &MemorySource{docs: make(map[string][]byte, len(docs))}
	for location, content := range docs {
		s.docs[location] = []byte(content)
	}
	return s
}

// Read returns a copy of the content stored at location.
func (s *MemorySource) Read(location string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[location]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores content at location, replacing any previous content.
func (s *MemorySource) Set(location, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[location] = []byte(content)
}
