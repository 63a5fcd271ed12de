package memory

import (
	"context"
	"sync"

	"castfast/internal/gateway"
)

// PendingStore backs up failed score submissions so a client can retry after
// a dropped transaction without replaying the game.
type PendingStore struct {
	mu      sync.RWMutex
	pending map[string]gateway.Request
}

func NewPendingStore() *PendingStore {
	return &PendingStore{pending: make(map[string]gateway.Request)}
}

func (s *PendingStore) Put(_ context.Context, playerID string, req gateway.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[playerID] = req
	return nil
}

func (s *PendingStore) Get(_ context.Context, playerID string) (gateway.Request, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.pending[playerID]
	return req, ok, nil
}

func (s *PendingStore) Delete(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, playerID)
	return nil
}
