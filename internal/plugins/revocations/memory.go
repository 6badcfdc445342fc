package revocations

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps revocations in process memory. Records are lost on
// restart and are not shared between replicas, so it is meant for
// development and tests.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory revocation store.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[token]; !ok {
		s.records[token] = Record{Token: token, RevokedAt: s.now().UTC()}
	}
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[token]
	return ok, nil
}

func (s *memoryStore) Find(_ context.Context, token string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[token]
	if !ok {
		return nil, ErrNotRevoked
	}
	return &rec, nil
}
