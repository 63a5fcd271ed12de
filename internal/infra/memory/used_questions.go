package memory

import (
	"context"
	"sync"
)

// UsedQuestionStore remembers which question texts have already been drawn so
// consecutive rounds avoid repeats. Process-local, reset on restart.
type UsedQuestionStore struct {
	mu   sync.RWMutex
	used []string
}

func NewUsedQuestionStore() *UsedQuestionStore {
	return &UsedQuestionStore{}
}

func (s *UsedQuestionStore) Get(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.used))
	copy(out, s.used)
	return out, nil
}

func (s *UsedQuestionStore) Set(_ context.Context, questions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used = make([]string, len(questions))
	copy(s.used, questions)
	return nil
}
