// Package store holds all volatile conversation and correlation state. Every
// mutation goes through a mutex so no reader can observe a partially-applied
// transition; nothing here survives a process restart.
package store

import (
	"sync"
	"time"
)

// entry wraps a stored value with its insertion time so pending items can be
// aged for operator visibility.
type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Store is a mutex-serialized map with insert, lookup, delete and
// consume-once semantics. Values are stored by value: callers get a copy,
// modify it, and Put it back as one atomic replacement.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
}

// New creates an empty store
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]entry[V]),
	}
}

// Get returns the value for a key and whether it exists
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.value, ok
}

// Put inserts or replaces the value for a key. The insertion time of an
// existing entry is preserved so replacement does not reset its age.
func (s *Store[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	createdAt := time.Now()
	if existing, ok := s.entries[key]; ok {
		createdAt = existing.createdAt
	}
	s.entries[key] = entry[V]{value: value, createdAt: createdAt}
}

// Delete removes a key; removing an absent key is a no-op
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Take returns and removes the value for a key in one step. This is the
// consume-once primitive of the correlation stores: a second Take of the
// same key reports absence.
func (s *Store[K, V]) Take(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return e.value, ok
}

// Len returns the number of stored entries
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// OldestAge returns how long the oldest entry has been pending, and false
// when the store is empty
func (s *Store[K, V]) OldestAge() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return 0, false
	}
	oldest := time.Now()
	for _, e := range s.entries {
		if e.createdAt.Before(oldest) {
			oldest = e.createdAt
		}
	}
	return time.Since(oldest), true
}
