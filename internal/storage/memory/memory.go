package memory

import (
	"context"
	"sync"

	"wastelog/internal/storage"
)

// Store is a process-local KV; contents vanish on exit.
type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewSeeded returns a store pre-populated with a copy of seed.
func NewSeeded(seed map[string][]byte) *Store {
	s := New()
	for k, v := range seed {
		s.items[k] = append([]byte(nil), v...)
	}
	return s
}

// GetItem returns a copy so callers cannot alias stored bytes.
func (s *Store) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, storage.ErrClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	delete(s.items, key)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
