// Package store loads named rulesets and serves their rule documents to the
// validation engine.
//
// A ruleset is a set of rule documents. Each document is a JSON object
// mapping data keys to rule strings, for example
//
//	{"name": "string", "age": "integer|nullable", "address": "array|file,address"}
//
// One document, "base" by default, is the entry point. Others are reached
// through file constraints.
//
// # Core Components
//
// Catalog maps ruleset names to document locations, and a Source reads the
// raw content (FileSource, FSSource, MemorySource).
//
// Loader reads and decodes every document of a ruleset, enforcing a size
// limit and UTF-8 encoding.
//
// Registry is a thread-safe index of decoded documents with copy-on-write
// replacement and a content version hash.
//
// Store ties a loader and a registry together for one ruleset, exposes
// Resolve for the engine and supports atomic Reload.
//
// Watcher and ReloadScheduler trigger reloads on file changes (fsnotify)
// or on a cron schedule.
//
// # Errors
//
// Opening a ruleset fails with *RulesetNotFoundError, *RulesetDecodeError,
// *LoadError or *RootDocumentError. All support errors.As.
package store
