package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"castfast/internal/gateway"
)

// PendingStore backs up failed score submissions in Redis. Entries expire on
// the configured TTL; a backup nobody retries is not worth keeping.
type PendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingStore(client *redis.Client, ttl time.Duration) *PendingStore {
	return &PendingStore{client: client, ttl: ttl}
}

func (s *PendingStore) Put(ctx context.Context, playerID string, req gateway.Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode pending submission: %w", err)
	}
	if err := s.client.Set(ctx, s.key(playerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save pending submission: %w", err)
	}
	return nil
}

func (s *PendingStore) Get(ctx context.Context, playerID string) (gateway.Request, bool, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Bytes()
	if err == redis.Nil {
		return gateway.Request{}, false, nil
	}
	if err != nil {
		return gateway.Request{}, false, fmt.Errorf("load pending submission: %w", err)
	}
	var req gateway.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = s.client.Del(ctx, s.key(playerID)).Err()
		return gateway.Request{}, false, nil
	}
	return req, true, nil
}

func (s *PendingStore) Delete(ctx context.Context, playerID string) error {
	if err := s.client.Del(ctx, s.key(playerID)).Err(); err != nil {
		return fmt.Errorf("delete pending submission: %w", err)
	}
	return nil
}

func (s *PendingStore) key(playerID string) string {
	return "castfast:pending:" + playerID
}
