package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicate indicates a tag is already registered in the category.
var ErrDuplicate = errors.New("tag already registered")

// Entry is a tag/value pair returned by Drain.
type Entry[V any] struct {
	Tag   string
	Value V
}

// Registry is a thread-safe tag → value store for a single resource category.
type Registry[V any] struct {
	category string

	mu      sync.RWMutex
	entries map[string]V
}

// New creates an empty registry for the named category.
// The category only appears in error messages.
func New[V any](category string) *Registry[V] {
	return &Registry[V]{
		category: category,
		entries:  make(map[string]V),
	}
}

// Category returns the category name the registry was created with.
func (r *Registry[V]) Category() string {
	return r.category
}

// Insert stores value under tag.
// Returns an error wrapping ErrDuplicate if the tag is already present.
func (r *Registry[V]) Insert(tag string, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tag]; exists {
		return fmt.Errorf("%s %q: %w", r.category, tag, ErrDuplicate)
	}
	r.entries[tag] = value
	return nil
}

// Get returns the value for a tag and whether it exists.
func (r *Registry[V]) Get(tag string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[tag]
	return v, ok
}

// MustGet returns the value for a tag, panicking if not found.
func (r *Registry[V]) MustGet(tag string) V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[tag]
	if !ok {
		panic(fmt.Sprintf("registry: %s %q not found", r.category, tag))
	}
	return v
}

// Has returns true if the tag exists in the registry.
func (r *Registry[V]) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[tag]
	return ok
}

// Remove deletes a tag and returns the value it held.
// The boolean is false if the tag was not registered.
func (r *Registry[V]) Remove(tag string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[tag]
	if ok {
		delete(r.entries, tag)
	}
	return v, ok
}

// Tags returns all registered tags in lexical order.
func (r *Registry[V]) Tags() []string {
	r.mu.RLock()
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	r.mu.RUnlock()

	sort.Strings(tags)
	return tags
}

// Len returns the number of entries in the registry.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for each entry in tag order until fn returns false.
//
// Range iterates over a snapshot, so it is safe to call Insert or Remove
// from fn.
func (r *Registry[V]) Range(fn func(tag string, value V) bool) {
	r.mu.RLock()
	snapshot := make([]Entry[V], 0, len(r.entries))
	for tag, v := range r.entries {
		snapshot = append(snapshot, Entry[V]{Tag: tag, Value: v})
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Tag < snapshot[j].Tag
	})
	for _, e := range snapshot {
		if !fn(e.Tag, e.Value) {
			return
		}
	}
}

// Drain removes every entry and returns them in tag order.
func (r *Registry[V]) Drain() []Entry[V] {
	r.mu.Lock()
	drained := make([]Entry[V], 0, len(r.entries))
	for tag, v := range r.entries {
		drained = append(drained, Entry[V]{Tag: tag, Value: v})
	}
	r.entries = make(map[string]V)
	r.mu.Unlock()

	sort.Slice(drained, func(i, j int) bool {
		return drained[i].Tag < drained[j].Tag
	})
	return drained
}
