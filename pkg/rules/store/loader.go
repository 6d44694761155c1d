package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"
)

// LoaderConfig contains configuration for the document loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum document size in bytes (default: 1MB)
	MaxFileSize int64
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize: 1024 * 1024,
	}
}

// Loader resolves ruleset names to documents through a catalog and reads
// them from a source.
type Loader struct {
	config  *LoaderConfig
	catalog Catalog
	source  Source
	logger  *slog.Logger
}

// NewLoader creates a loader. A nil config uses DefaultLoaderConfig; a nil
// logger uses slog.Default.
func NewLoader(catalog Catalog, source Source, config *LoaderConfig, logger *slog.Logger) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config:  config,
		catalog: catalog,
		source:  source,
		logger:  logger.With("component", "rules.loader"),
	}
}

// Catalog returns the loader's catalog.
func (l *Loader) Catalog() Catalog {
	return l.catalog
}

// Source returns the loader's source.
func (l *Loader) Source() Source {
	return l.source
}

// LoadDocument reads and decodes a single document.
func (l *Loader) LoadDocument(name, location string) (*Document, error) {
	data, err := l.source.Read(location)
	if err != nil {
		return nil, &LoadError{
			Document: name,
			Location: location,
			Message:  "failed to read document",
			Cause:    err,
		}
	}

	if l.config.MaxFileSize > 0 && int64(len(data)) > l.config.MaxFileSize {
		return nil, &LoadError{
			Document: name,
			Location: location,
			Message:  fmt.Sprintf("document size %d bytes exceeds maximum %d bytes", len(data), l.config.MaxFileSize),
		}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{
			Document: name,
			Location: location,
			Message:  "document contains invalid UTF-8 encoding",
		}
	}

	doc, err := DecodeDocument(name, data)
	if err != nil {
		var decodeErr *RulesetDecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Location = location
		}
		return nil, err
	}
	doc.Location = location

	return doc, nil
}

// LoadRuleset loads every document registered for a ruleset. Documents are
// read in name order and the first failure aborts the load.
func (l *Loader) LoadRuleset(ruleset string) (map[string]*Document, error) {
	locations, ok := l.catalog.Documents(ruleset)
	if !ok {
		return nil, &RulesetNotFoundError{
			Ruleset:   ruleset,
			Available: l.catalog.Rulesets(),
		}
	}

	names := make([]string, 0, len(locations))
	for name := range locations {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make(map[string]*Document, len(names))
	for _, name := range names {
		doc, err := l.LoadDocument(name, locations[name])
		if err != nil {
			var decodeErr *RulesetDecodeError
			if errors.As(err, &decodeErr) {
				decodeErr.Ruleset = ruleset
			}
			l.logger.Error("Failed to load rule document",
				"ruleset", ruleset,
				"document", name,
				"location", locations[name],
				"error", err,
			)
			return nil, err
		}
		docs[name] = doc
	}

	l.logger.Debug("Ruleset loaded",
		"ruleset", ruleset,
		"documents", len(docs),
	)

	return docs, nil
}

// Paths returns the file system paths of a ruleset's documents when the
// source is a FileSource, nil otherwise.
func (l *Loader) Paths(ruleset string) []string {
	fileSource, ok := l.source.(*FileSource)
	if !ok {
		return nil
	}
	locations, ok := l.catalog.Documents(ruleset)
	if !ok {
		return nil
	}

	paths := make([]string, 0, len(locations))
	for _, location := range locations {
		paths = append(paths, fileSource.Path(location))
	}
	sort.Strings(paths)
	return paths
}
