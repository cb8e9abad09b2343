// Package store implements the SQLite build cache. Compiled bundles are
// keyed by source hash so repeat builds of unchanged files skip the
// compiler entirely.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/sofplus/cvarpack/bundle"
)

// ErrNotFound indicates no cached build exists for the requested hash.
var ErrNotFound = errors.New("build not found")

var log = commonlog.GetLogger("cvarpack.store")

// Store handles SQLite storage for cached builds.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Entry describes one cached build row.
type Entry struct {
	ID      string
	Label   string
	Hash    string // hex source hash
	Created time.Time
}

// Open opens (creating if needed) a build cache at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		hash TEXT NOT NULL UNIQUE,
		bundle BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened build cache at %s", dbPath)
	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a bundle, replacing any previous build of the same source.
func (s *Store) Put(b *bundle.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := bundle.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}

	hash := hex.EncodeToString(b.Hash[:])
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO builds (id, label, hash, bundle) VALUES (?, ?, ?, ?)",
		uuid.NewString(), b.Label, hash, data,
	)
	if err != nil {
		return fmt.Errorf("saving build: %w", err)
	}

	log.Debugf("cached build %s (%s)", b.Label, hash[:8])
	return nil
}

// Get retrieves the cached bundle for a source hash. Returns ErrNotFound
// when no build exists.
func (s *Store) Get(hash [32]byte) (*bundle.Bundle, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT bundle FROM builds WHERE hash = ?",
		hex.EncodeToString(hash[:]),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying build: %w", err)
	}
	return bundle.Unmarshal(data)
}

// List returns metadata for every cached build, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT id, label, hash, created_at FROM builds ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Label, &e.Hash, &e.Created); err != nil {
			return nil, fmt.Errorf("scanning build row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune removes all cached builds.
func (s *Store) Prune() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM builds")
	if err != nil {
		return 0, fmt.Errorf("pruning builds: %w", err)
	}
	return res.RowsAffected()
}
