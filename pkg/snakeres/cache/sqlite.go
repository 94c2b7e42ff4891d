package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists cache entries to SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a SQLite cache database.
// The path should be a file path (e.g., "./assets.cache") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each pooled connection to ":memory:" would see its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS assets (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			updated TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(namespace, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO assets (namespace, key, updated, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			updated = excluded.updated,
			data = excluded.data
	`, namespace, key, time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM assets
		WHERE namespace = ? AND key = ?
	`, namespace, key).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return data, nil
}

// List implements Store.
func (s *SQLiteStore) List(namespace string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT key, updated, LENGTH(data)
		FROM assets
		WHERE namespace = ?
		ORDER BY key
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.Key, &updated, &info.Size); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		info.Namespace = namespace
		info.Updated, _ = time.Parse(time.RFC3339Nano, updated)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`
		DELETE FROM assets WHERE namespace = ? AND key = ?
	`, namespace, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var err error
	if namespace == "" {
		_, err = s.db.Exec(`DELETE FROM assets`)
	} else {
		_, err = s.db.Exec(`DELETE FROM assets WHERE namespace = ?`, namespace)
	}
	if err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
