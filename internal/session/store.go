// Package session gates the intro boot sequence to once per terminal session.
package session

import (
	"fmt"
	"os"
	"sync"
)

// Store is a small key-value store scoped to one session.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear(key string) error
}

// MemoryStore is an in-process Store. Its contents die with the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// ResolveID returns the session identifier. An explicit id wins; otherwise the
// parent process (the invoking shell) identifies the session, so re-running the
// client from the same shell counts as a reload and a new shell starts fresh.
func ResolveID(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("ppid-%d", os.Getppid())
}
