// Package blob is the durable half of the workspace's write-through
// persistence contract: each named aggregate is stored as one whole JSON
// value under a well-known key, replaced in full on every write.
package blob

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Well-known keys. The names are part of the persisted-state layout and
// must not change between releases.
const (
	KeyCalendar        = "infinity-calendar-v1"
	KeyProjects        = "infinity-projects-v1"
	KeyDashboardLayout = "infinity_dashboard_pinned_layout_v1"
	KeyTheme           = "infinity.theme"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("blob: key not found")

// Store is a SQLite-backed key-value store for JSON blobs.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	mu     sync.RWMutex
}

// Open opens (or creates) the SQLite database at dbPath and runs migrations.
// Pass ":memory:" for an ephemeral store.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "blob.store").Logger(),
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	s.logger.Info().Str("path", dbPath).Msg("blob store initialized")
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create blobs table: %w", err)
	}
	return nil
}

// Get returns the raw JSON stored under key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %q: %w", key, err)
	}
	return []byte(value), nil
}

// Put replaces the value under key in full.
func (s *Store) Put(key string, value []byte) error {
	now := time.Now().UnixMilli()
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO blobs (key, value, updated_at) VALUES (?, ?, ?)`,
		key, string(value), now,
	)
	if err != nil {
		return fmt.Errorf("failed to put blob %q: %w", key, err)
	}
	return nil
}

// Delete removes the value under key. Missing keys are a no-op.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
