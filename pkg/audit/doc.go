// Package audit records validation history.
//
// Every run checked through the facade can be written as an Entry holding
// the run ID, ruleset, content version, outcome and diagnostics. Two
// stores are provided:
//
//   - MemoryStore: bounded in-memory history, lost on exit
//   - SQLiteStore: file-backed history using modernc.org/sqlite in WAL mode
//
// # Usage
//
//	store, err := audit.Open(cfg.Audit)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	entries, err := store.List(ctx, audit.Query{Ruleset: "person", Limit: 20})
//
// # Thread Safety
//
// Both stores are safe for concurrent use.
package audit
