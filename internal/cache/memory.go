package cache

import (
	"sync"

	"arbiter/internal/audit"
)

// MemoryStore is an in-process Store used in tests and for single-shot CLI
// runs with caching disabled on disk.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]audit.Result
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]audit.Result)}
}

// FindByHash implements Store.
func (s *MemoryStore) FindByHash(hash string) (*audit.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[hash]
	if !ok {
		return nil, false, nil
	}
	cp := res
	return &cp, true, nil
}

// Store implements Store. Values are copied on write.
func (s *MemoryStore) Store(hash string, res *audit.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hash] = *res
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
