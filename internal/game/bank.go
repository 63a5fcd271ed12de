package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"castfast/internal/domain"
)

// UsedQuestionStore persists the list of question texts already shown to a
// player, so consecutive games avoid repeats. Implementations are free to be
// best-effort; an empty list simply allows repeats sooner.
type UsedQuestionStore interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, questions []string) error
}

// Bank is the fixed, read-only set of trivia questions loaded at startup.
type Bank struct {
	questions []domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBank validates and wraps a question list. Items without exactly four
// options or with an out-of-range answer index are dropped.
func NewBank(questions []domain.Question) (*Bank, error) {
	valid := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if len(q.Options) != 4 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, domain.ErrQuestionBankEmpty
	}
	return &Bank{
		questions: valid,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (b *Bank) Len() int { return len(b.questions) }

// QuestionAt returns the question at index, falling back to the first
// question for out-of-range indices so a stale frame still renders.
func (b *Bank) QuestionAt(index int) domain.Question {
	if index < 0 || index >= len(b.questions) {
		return b.questions[0]
	}
	return b.questions[index]
}

// PickRound draws n questions for a round, preferring questions not yet in
// the used list. When too few unused questions remain the draw falls back to
// the full bank, deliberately allowing repeats so the game stays playable
// indefinitely. Drawn question texts are appended to the store.
func (b *Bank) PickRound(ctx context.Context, used UsedQuestionStore, n int) ([]domain.Question, error) {
	usedList, err := used.Get(ctx)
	if err != nil {
		usedList = nil
	}
	usedSet := make(map[string]struct{}, len(usedList))
	for _, text := range usedList {
		usedSet[text] = struct{}{}
	}

	available := make([]domain.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if _, ok := usedSet[q.Text]; !ok {
			available = append(available, q)
		}
	}

	pool := available
	if len(available) < n {
		pool = b.questions
	}

	picked := b.sample(pool, n)

	for _, q := range picked {
		usedList = append(usedList, q.Text)
	}
	if err := used.Set(ctx, usedList); err != nil {
		return picked, err
	}
	return picked, nil
}

func (b *Bank) sample(pool []domain.Question, n int) []domain.Question {
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)

	b.mu.Lock()
	b.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	b.mu.Unlock()

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
