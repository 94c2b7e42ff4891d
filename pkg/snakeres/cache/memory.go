package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory cache store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]storedEntry // namespace -> key -> entry
	closed bool
}

type storedEntry struct {
	data    []byte
	updated time.Time
}

// NewMemoryStore creates a new in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]storedEntry),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(namespace, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]storedEntry)
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	m.data[namespace][key] = storedEntry{
		data:    stored,
		updated: time.Now().UTC(),
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	e, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(e.data))
	copy(result, e.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List(namespace string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	ns := m.data[namespace]
	infos := make([]Info, 0, len(ns))
	for key, e := range ns {
		infos = append(infos, Info{
			Namespace: namespace,
			Key:       key,
			Updated:   e.updated,
			Size:      int64(len(e.data)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if ns, ok := m.data[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

// Purge implements Store.
func (m *MemoryStore) Purge(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if namespace == "" {
		m.data = make(map[string]map[string]storedEntry)
		return nil
	}
	delete(m.data, namespace)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of entries across all namespaces.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ns := range m.data {
		count += len(ns)
	}
	return count
}
