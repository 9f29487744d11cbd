package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when no record matches the given identifier.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS cupping_sessions (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id      TEXT NOT NULL UNIQUE,
		share_id        TEXT UNIQUE,
		user_email      TEXT NOT NULL DEFAULT '',
		name            TEXT NOT NULL,
		date            TEXT NOT NULL,
		cupper          TEXT NOT NULL DEFAULT '',
		protocol        TEXT NOT NULL DEFAULT 'SCA Standard',
		water_temp      INTEGER NOT NULL DEFAULT 93,
		cups_per_sample INTEGER NOT NULL DEFAULT 5,
		blind           INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'Setup',
		session_notes   TEXT NOT NULL DEFAULT '',
		anonymous_mode  INTEGER NOT NULL DEFAULT 0,
		scored_date     TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS samples (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id   TEXT NOT NULL REFERENCES cupping_sessions(session_id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		name         TEXT NOT NULL,
		origin       TEXT NOT NULL DEFAULT '',
		variety      TEXT NOT NULL DEFAULT '',
		process      TEXT NOT NULL DEFAULT '',
		altitude     TEXT NOT NULL DEFAULT '',
		harvest_year TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_samples_session ON samples(session_id);

	CREATE TABLE IF NOT EXISTS scores (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id       TEXT NOT NULL REFERENCES cupping_sessions(session_id) ON DELETE CASCADE,
		position         INTEGER NOT NULL DEFAULT 0,
		sample_name      TEXT NOT NULL,
		fragrance        REAL NOT NULL DEFAULT 0,
		flavor           REAL NOT NULL DEFAULT 0,
		aftertaste       REAL NOT NULL DEFAULT 0,
		acidity          REAL NOT NULL DEFAULT 0,
		body             REAL NOT NULL DEFAULT 0,
		balance          REAL NOT NULL DEFAULT 0,
		uniformity       REAL NOT NULL DEFAULT 0,
		clean_cup        REAL NOT NULL DEFAULT 0,
		sweetness        REAL NOT NULL DEFAULT 0,
		overall          REAL NOT NULL DEFAULT 0,
		defects          REAL NOT NULL DEFAULT 0,
		total            REAL NOT NULL DEFAULT 0,
		notes            TEXT NOT NULL DEFAULT '',
		selected_flavors TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_scores_session ON scores(session_id);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		data       TEXT NOT NULL DEFAULT '',
		timestamp  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON analytics_events(session_id);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_cupper',   ''),
		('default_protocol', 'SCA Standard'),
		('water_temp',       '93'),
		('cups_per_sample',  '5'),
		('share_base_url',   'https://cupr.coffee'),
		('anonymous_mode',   'off');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/cupr/cupr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "cupr", "cupr.db"), nil
}
