package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

// SQLiteStore persists history in a SQLite database file. It uses a
// write-ahead log and a single connection, which suits a single-instance
// service.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once
	closed             bool

	insertStmt  *sql.Stmt
	getStmt     *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens or creates the database at dbPath with default
// settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig opens or creates a database with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.DBPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS validation_runs (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		ruleset TEXT NOT NULL,
		root TEXT NOT NULL,
		version TEXT NOT NULL DEFAULT '',
		ok INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		errors TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_ruleset_started ON validation_runs(ruleset, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON validation_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO validation_runs
			(id, run_id, ruleset, root, version, ok, error_count, errors, started_at, duration_ns, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT ` + entryColumns + `
		FROM validation_runs
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM validation_runs
		WHERE started_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

const entryColumns = `id, run_id, ruleset, root, version, ok, error_count, errors, started_at, duration_ns, recorded_at`

// Record persists entry.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	if err := prepare(entry); err != nil {
		return err
	}

	var errorsJSON []byte
	if len(entry.Errors) > 0 {
		var err error
		errorsJSON, err = json.Marshal(entry.Errors)
		if err != nil {
			return fmt.Errorf("failed to marshal errors: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.insertStmt.ExecContext(ctx,
		entry.ID,
		entry.RunID,
		entry.Ruleset,
		entry.Root,
		entry.Version,
		boolToInt(entry.OK),
		entry.ErrorCount,
		string(errorsJSON),
		entry.StartedAt.UnixNano(),
		int64(entry.Duration),
		entry.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}

	return nil
}

// Get returns the entry with the given ID, or nil if none exists.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	entry, err := scanEntry(s.getStmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// List returns matching entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]*Entry, error) {
	var (
		where []string
		args  []any
	)
	if q.Ruleset != "" {
		where = append(where, "ruleset = ?")
		args = append(args, q.Ruleset)
	}
	if q.FailedOnly {
		where = append(where, "ok = 0")
	}
	if !q.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}

	query := "SELECT " + entryColumns + " FROM validation_runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, recorded_at DESC LIMIT ?"
	args = append(args, q.limit())

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Cleanup removes entries started before olderThan.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close releases the database. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true

		for _, stmt := range []*sql.Stmt{s.insertStmt, s.getStmt, s.cleanupStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		// Run final checkpoint
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()
	})

	return closeErr
}

func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			if !s.closed {
				_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
			}
			s.mu.RUnlock()
		case <-s.done:
			return
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e          Entry
		ok         int
		errorsJSON string
		startedAt  int64
		duration   int64
		recordedAt int64
	)

	if err := row.Scan(
		&e.ID,
		&e.RunID,
		&e.Ruleset,
		&e.Root,
		&e.Version,
		&ok,
		&e.ErrorCount,
		&errorsJSON,
		&startedAt,
		&duration,
		&recordedAt,
	); err != nil {
		return nil, err
	}

	e.OK = ok != 0
	e.StartedAt = time.Unix(0, startedAt)
	e.Duration = time.Duration(duration)
	e.RecordedAt = time.Unix(0, recordedAt)

	if errorsJSON != "" {
		var records []ruleerrors.Record
		if err := json.Unmarshal([]byte(errorsJSON), &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
		}
		e.Errors = records
	}

	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
