package store

import (
	"context"
	"sync"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// MemoryStore implements CartStore with in-memory storage. It backs
// tests and can serve deployments that do not need carts to survive a
// restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string][]domain.CartItem),
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (LoadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.slots[sessionID]
	if !ok {
		return LoadResult{}, nil
	}

	copied := make([]domain.CartItem, len(items))
	copy(copied, items)
	return LoadResult{Items: copied}, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, items []domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]domain.CartItem, len(items))
	copy(copied, items)
	s.slots[sessionID] = copied
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, sessionID)
	return nil
}
