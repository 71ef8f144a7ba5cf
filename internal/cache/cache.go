// Package cache is a SQLite-backed memo store for solved problems,
// keyed by a content hash of the problem's YAML source. The teacher
// module declares modernc.org/sqlite as a dependency but no Go source
// in it ever opens a database; this is the first thing in the lineage
// that actually does.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding one row per distinct problem.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS solutions (
	hash       TEXT PRIMARY KEY,
	solution   BLOB NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key hashes a problem's raw YAML source into a cache key.
func Key(problemSource []byte) string {
	sum := sha256.Sum256(problemSource)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached solution bytes for hash, or ok=false if absent.
func (s *Store) Get(hash string) (solution []byte, ok bool, err error) {
	row := s.db.QueryRow(`SELECT solution FROM solutions WHERE hash = ?`, hash)
	if err := row.Scan(&solution); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %s: %w", hash, err)
	}
	return solution, true, nil
}

// Put stores solution under hash, overwriting any prior entry.
func (s *Store) Put(hash string, solution []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO solutions (hash, solution) VALUES (?, ?)
		 ON CONFLICT(hash) DO UPDATE SET solution = excluded.solution, created_at = unixepoch()`,
		hash, solution,
	)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", hash, err)
	}
	return nil
}

// Count returns the number of cached solutions, used by latusc cache
// stats.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM solutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}
