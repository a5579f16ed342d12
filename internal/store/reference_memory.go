package store

import (
	"context"
	"sync"
	"time"
)

// MemoryReferenceStore is the in-process reference store used in tests
// and when redis is unavailable. Expired bindings are dropped lazily on
// lookup.
type MemoryReferenceStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	bindings map[string]memoryBinding
	now      func() time.Time
}

type memoryBinding struct {
	itemID    string
	expiresAt time.Time
}

func NewMemoryReferenceStore(ttl time.Duration) *MemoryReferenceStore {
	return &MemoryReferenceStore{
		ttl:      ttl,
		bindings: make(map[string]memoryBinding),
		now:      time.Now,
	}
}

func (s *MemoryReferenceStore) Bind(ctx context.Context, reference, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[reference] = memoryBinding{itemID: itemID, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryReferenceStore) Lookup(ctx context.Context, reference string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[reference]
	if !ok {
		return "", nil
	}
	if s.now().After(b.expiresAt) {
		delete(s.bindings, reference)
		return "", nil
	}
	return b.itemID, nil
}
