// Package kv holds the raw key-value mapping behind the cache.
//
// Map performs no validation and no notification; those belong to the
// cache layer. It is safe for concurrent use.
package kv

import (
	"sort"
	"sync"
)

// Map is the authoritative key to value mapping.
type Map struct {
	mu      sync.RWMutex
	entries map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[string]any)}
}

// Get returns the value stored under key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set unconditionally inserts or overwrites the entry for key.
func (m *Map) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Swap stores value under key and returns the previous value.
// The read and the write happen under one lock.
func (m *Map) Swap(key string, value any) (prev any, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, loaded = m.entries[key]
	m.entries[key] = value
	return prev, loaded
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]any)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Keys returns all keys in sorted order.
func (m *Map) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Range calls fn for each entry in key order until fn returns false.
// fn sees a consistent copy; it may call back into the Map.
func (m *Map) Range(fn func(key string, value any) bool) {
	m.mu.RLock()
	copied := make(map[string]any, len(m.entries))
	for k, v := range m.entries {
		copied[k] = v
	}
	m.mu.RUnlock()

	keys := make([]string, 0, len(copied))
	for k := range copied {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !fn(k, copied[k]) {
			return
		}
	}
}
