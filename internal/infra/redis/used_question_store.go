package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const usedQuestionsKey = "castfast:used-questions"

// UsedQuestionStore shares the drawn-question list across instances so round
// selection avoids repeats no matter which server handles the round.
type UsedQuestionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUsedQuestionStore(client *redis.Client, ttl time.Duration) *UsedQuestionStore {
	return &UsedQuestionStore{client: client, ttl: ttl}
}

func (s *UsedQuestionStore) Get(ctx context.Context) ([]string, error) {
	raw, err := s.client.Get(ctx, usedQuestionsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load used questions: %w", err)
	}
	var used []string
	if err := json.Unmarshal(raw, &used); err != nil {
		_ = s.client.Del(ctx, usedQuestionsKey).Err()
		return nil, nil
	}
	return used, nil
}

func (s *UsedQuestionStore) Set(ctx context.Context, questions []string) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode used questions: %w", err)
	}
	if err := s.client.Set(ctx, usedQuestionsKey, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save used questions: %w", err)
	}
	return nil
}
