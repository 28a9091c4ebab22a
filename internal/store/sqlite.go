package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path (~/.recall/recall.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".recall", "recall.db"), nil
}

// Open creates a new SQLiteStore backed by the database at dbPath.
// If the path is empty, the default path (~/.recall/recall.db) is used.
// Pass ":memory:" for an ephemeral store (used by tests).
// The database is opened with WAL mode enabled for better concurrency.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	if dbPath == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles concurrency better with a single writer; the
	// busy_timeout pragma covers concurrent shell sessions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying database connection for advanced use cases.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Stats returns row counts for the main tables.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	queries := []struct {
		sql  string
		dest *int64
	}{
		{"SELECT COUNT(*) FROM commands", &st.TotalCommands},
		{"SELECT COUNT(*) FROM command_patterns", &st.TotalPatterns},
		{"SELECT COUNT(*) FROM suggestions", &st.TotalSuggestions},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to read stats: %w", err)
		}
	}
	return &st, nil
}

// migrate runs database migrations to ensure the schema is up to date.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `
		SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1
	`)
	if err := row.Scan(&currentVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isTableNotFoundError(err) {
			currentVersion = 0
		} else {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
		{version: 2, sql: migrationV2},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// isTableNotFoundError checks if the error indicates a missing table.
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}

// nullStr converts an optional string to its SQL representation.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullInt64 converts an optional int64 to its SQL representation.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// migrationV1 creates the initial schema.
const migrationV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

-- Command history. One row per (project_path, command); repeats bump
-- usage_count instead of inserting.
CREATE TABLE IF NOT EXISTS commands (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  command_id TEXT NOT NULL UNIQUE,
  project_path TEXT NOT NULL,
  command TEXT NOT NULL,
  ts_unix_ms INTEGER NOT NULL,
  usage_count INTEGER NOT NULL DEFAULT 1,
  execution_time_ms INTEGER,
  exit_code INTEGER,
  tags TEXT NOT NULL DEFAULT '[]',
  context TEXT,
  UNIQUE(project_path, command)
);

CREATE INDEX IF NOT EXISTS idx_commands_ts ON commands(ts_unix_ms DESC);
CREATE INDEX IF NOT EXISTS idx_commands_usage ON commands(usage_count DESC);
CREATE INDEX IF NOT EXISTS idx_commands_project ON commands(project_path, ts_unix_ms DESC);

-- Detected patterns
CREATE TABLE IF NOT EXISTS command_patterns (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  pattern_type TEXT NOT NULL,
  commands TEXT NOT NULL,
  project_path TEXT,
  confidence_score REAL NOT NULL,
  occurrences INTEGER NOT NULL DEFAULT 1,
  last_seen_unix_ms INTEGER NOT NULL,
  metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_patterns_project ON command_patterns(project_path, confidence_score DESC);

-- Generated suggestions with feedback counters
CREATE TABLE IF NOT EXISTS suggestions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  project_path TEXT NOT NULL,
  context TEXT,
  suggested_command TEXT NOT NULL,
  reason TEXT,
  confidence REAL NOT NULL,
  times_accepted INTEGER NOT NULL DEFAULT 0,
  times_rejected INTEGER NOT NULL DEFAULT 0,
  created_at_unix_ms INTEGER NOT NULL,
  last_suggested_unix_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_suggestions_project ON suggestions(project_path, confidence DESC);
`

// migrationV2 adds derived command metadata.
const migrationV2 = `
ALTER TABLE commands ADD COLUMN word_count INTEGER NOT NULL DEFAULT 0;
`
