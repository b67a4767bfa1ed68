package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps frequencies in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]int)}
}

// Register adds userID with FrequencyUnset when it is not stored yet.
func (s *MemoryStore) Register(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		s.users[userID] = FrequencyUnset
	}
	return nil
}

// Save sets the frequency for userID.
func (s *MemoryStore) Save(_ context.Context, userID string, frequency int) error {
	if err := ValidateFrequency(frequency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = frequency
	return nil
}

// ListUsers returns every stored user ID, sorted.
func (s *MemoryStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListUsersWithFrequencyAtLeast returns the sorted IDs with frequency >= n.
func (s *MemoryStore) ListUsersWithFrequencyAtLeast(_ context.Context, n int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, f := range s.users {
		if f >= n {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetFrequency returns the stored frequency or FrequencyUnset.
func (s *MemoryStore) GetFrequency(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.users[userID]
	if !ok {
		return FrequencyUnset, nil
	}
	return f, nil
}
