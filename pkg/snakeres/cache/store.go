// Package cache persists decoded asset payloads so repeated loads of the
// same file content can skip decoding.
package cache

import (
	"errors"
	"time"
)

// Store persists decoded assets keyed by (namespace, key).
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under (namespace, key).
	// Overwrites if an entry already exists.
	Put(namespace, key string, data []byte) error

	// Get retrieves an entry.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(namespace, key string) ([]byte, error)

	// List returns metadata for every entry in a namespace, ordered by key.
	// Returns empty slice (not error) if the namespace is empty.
	List(namespace string) ([]Info, error)

	// Delete removes a single entry.
	// Returns nil if the entry doesn't exist.
	Delete(namespace, key string) error

	// Purge removes every entry in a namespace, or every entry when
	// namespace is empty.
	Purge(namespace string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides entry metadata without loading the payload.
type Info struct {
	Namespace string
	Key       string
	Updated   time.Time
	Size      int64
}

// Sentinel errors for cache operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("cache entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("cache store closed")
)
