package session

import (
	"context"
	"sync"
)

// MemoryStore is a non-persistent Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	username string
	present  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Current(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", ErrNoSession
	}
	return s.username, nil
}

func (s *MemoryStore) Save(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.present = true
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.present = false
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
