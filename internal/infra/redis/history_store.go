package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"castfast/internal/domain"
)

// HistoryStore persists per-player play history as a JSON blob with a TTL,
// so records survive restarts but idle players age out on their own.
type HistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHistoryStore(client *redis.Client, ttl time.Duration) *HistoryStore {
	return &HistoryStore{client: client, ttl: ttl}
}

func (s *HistoryStore) Load(ctx context.Context, playerID string) ([]domain.HistoryRecord, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	var records []domain.HistoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt blob should not brick the player's history forever.
		_ = s.client.Del(ctx, s.key(playerID)).Err()
		return nil, nil
	}
	return records, nil
}

func (s *HistoryStore) Save(ctx context.Context, playerID string, records []domain.HistoryRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.client.Set(ctx, s.key(playerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *HistoryStore) Clear(ctx context.Context, playerID string) error {
	if err := s.client.Del(ctx, s.key(playerID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *HistoryStore) key(playerID string) string {
	return "castfast:history:" + playerID
}
