package ragcontext

import (
	"context"
	"sync"
)

// Store holds the most recently imported reference text. Set replaces the
// value unconditionally; Get returns "" until something is set.
type Store interface {
	Set(ctx context.Context, text string) error
	Get(ctx context.Context) (string, error)
	Has(ctx context.Context) (bool, error)
}

// MemoryStore keeps the context in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	text string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(_ context.Context, text string) error {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text, nil
}

func (s *MemoryStore) Has(ctx context.Context) (bool, error) {
	text, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return text != "", nil
}
