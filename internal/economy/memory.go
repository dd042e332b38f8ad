package economy

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-memory map. Used for testing.
// Records are copied on the way in and out to avoid external mutation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*UserRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*UserRecord)}
}

func (s *MemoryStore) Read(_ context.Context, userID string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		rec = NewUserRecord()
		s.records[userID] = rec
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Lookup(_ context.Context, userID string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Write(_ context.Context, userID string, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = rec.Clone()
	return nil
}

func (s *MemoryStore) WritePair(_ context.Context, firstID string, first *UserRecord, secondID string, second *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[firstID] = first.Clone()
	s.records[secondID] = second.Clone()
	return nil
}
