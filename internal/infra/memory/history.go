package memory

import (
	"context"
	"sync"

	"castfast/internal/domain"
)

// HistoryStore keeps play history per player in process memory. It is the
// default when no Redis address is configured.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string][]domain.HistoryRecord
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{records: make(map[string][]domain.HistoryRecord)}
}

func (s *HistoryStore) Load(_ context.Context, playerID string) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.records[playerID]
	out := make([]domain.HistoryRecord, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *HistoryStore) Save(_ context.Context, playerID string, records []domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.HistoryRecord, len(records))
	copy(stored, records)
	s.records[playerID] = stored
	return nil
}

func (s *HistoryStore) Clear(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, playerID)
	return nil
}
