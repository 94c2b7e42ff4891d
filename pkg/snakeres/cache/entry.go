package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Version is the current entry envelope version.
// Entries with a different version are treated as misses.
const Version = 1

// Entry is the envelope stored for one decoded asset.
type Entry struct {
	Version   int               `json:"version"`
	Namespace string            `json:"namespace"`
	Key       string            `json:"key"`
	Created   time.Time         `json:"created"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Data      []byte            `json:"data"`
}

// NewEntry creates an envelope for data.
func NewEntry(namespace, key string, data []byte) *Entry {
	return &Entry{
		Version:   Version,
		Namespace: namespace,
		Key:       key,
		Created:   time.Now().UTC(),
		Data:      data,
	}
}

// WithAttr sets a metadata attribute (image size, sample rate, ...).
func (e *Entry) WithAttr(name, value string) *Entry {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
	return e
}

// Marshal serializes the envelope to JSON.
func (e *Entry) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal deserializes an envelope and checks its version.
func Unmarshal(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Version != Version {
		return nil, fmt.Errorf("cache entry version %d, want %d", e.Version, Version)
	}
	return &e, nil
}

// ContentKey returns the xxhash64 of content as 16 hex digits.
func ContentKey(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// PutEntry marshals e and stores it under its namespace and key.
func PutEntry(s Store, e *Entry) error {
	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return s.Put(e.Namespace, e.Key, data)
}

// GetEntry loads and decodes the envelope for (namespace, key).
// Returns ErrNotFound if missing.
func GetEntry(s Store, namespace, key string) (*Entry, error) {
	data, err := s.Get(namespace, key)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
