package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"PulseAtlas/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the single shared data surface: signals, cursors, actions,
// engine state, index snapshots and registered documents live in one
// SQLite file. Writes are serialized through a mutex; the unique
// indexes make inserts idempotent even under an overlapping run.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboard reads while the pipeline writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			ts        TEXT NOT NULL,
			source    TEXT NOT NULL,
			origin    TEXT,
			object    TEXT,
			kind      TEXT,
			title     TEXT,
			text      TEXT NOT NULL,
			summary   TEXT,
			url       TEXT,
			tags      TEXT,
			meta      TEXT,
			raw       TEXT,
			score     REAL NOT NULL,
			color     TEXT NOT NULL,
			label     TEXT NOT NULL,
			rationale TEXT
		)`,
		// Partial unique index: the global dedup key. Only rows with a
		// real source and url participate.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_signals_source_url
			ON signals(source, url)
			WHERE source IS NOT NULL AND source != ''
			  AND url IS NOT NULL AND url != ''`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(ts)`,

		`CREATE TABLE IF NOT EXISTS cursors (
			source     TEXT PRIMARY KEY,
			cursor     TEXT,
			updated_at TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS seen_hashes (
			hash       TEXT PRIMARY KEY,
			first_seen TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS actions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ts          TEXT NOT NULL,
			signal_id   INTEGER NOT NULL,
			action_type TEXT NOT NULL,
			priority    INTEGER NOT NULL,
			title       TEXT,
			url         TEXT,
			payload     TEXT,
			status      TEXT NOT NULL DEFAULT 'open',
			dedup_key   TEXT NOT NULL UNIQUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts)`,

		`CREATE TABLE IF NOT EXISTS engine_state (
			k TEXT PRIMARY KEY,
			v TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS object_index (
			ts          TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			object      TEXT NOT NULL,
			n_total     INTEGER NOT NULL,
			risk_share  REAL NOT NULL,
			vol_norm    REAL NOT NULL,
			recency     REAL NOT NULL,
			oii         REAL NOT NULL,
			PRIMARY KEY (ts, window_days, object)
		)`,

		`CREATE TABLE IF NOT EXISTS documents (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			ts       TEXT NOT NULL,
			source   TEXT NOT NULL DEFAULT 'inbox',
			url      TEXT,
			filename TEXT NOT NULL,
			sha256   TEXT NOT NULL UNIQUE,
			pages    INTEGER DEFAULT 0,
			status   TEXT NOT NULL DEFAULT 'new',
			err      TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Stats returns total and distinct-URL signal counts.
func (s *Store) Stats() (model.Stats, error) {
	var st model.Stats
	err := s.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT url)
		FROM signals WHERE url IS NOT NULL AND url != ''`).
		Scan(&st.Total, &st.UniqueURLs)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (s *Store) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
