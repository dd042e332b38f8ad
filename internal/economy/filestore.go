package economy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every user record in one JSON file keyed by user id and
// rewrites the whole file on every mutation. A process-local mutex serializes
// access; there is no cross-process locking.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the data directory and the backing file if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create user data file: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) load() (map[string]*UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*UserRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read user data: %w", err)
	}
	records := map[string]*UserRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}
	return records, nil
}

func (s *FileStore) save(records map[string]*UserRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user data: %w", err)
	}
	return nil
}

func (s *FileStore) Read(_ context.Context, userID string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := records[userID]
	if !ok {
		rec = NewUserRecord()
		records[userID] = rec
		if err := s.save(records); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (s *FileStore) Lookup(_ context.Context, userID string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func (s *FileStore) Write(_ context.Context, userID string, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[userID] = rec
	return s.save(records)
}

func (s *FileStore) WritePair(_ context.Context, firstID string, first *UserRecord, secondID string, second *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[firstID] = first
	records[secondID] = second
	return s.save(records)
}
