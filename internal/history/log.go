package history

import (
	"context"
	"time"

	"castfast/internal/domain"
)

const (
	maxRecords  = 10
	dedupWindow = 5 * time.Second
)

// Store persists a player's raw history list. Implementations live in
// internal/infra; the capping and dedup policy lives here.
type Store interface {
	Load(ctx context.Context, playerID string) ([]domain.HistoryRecord, error)
	Save(ctx context.Context, playerID string, records []domain.HistoryRecord) error
	Clear(ctx context.Context, playerID string) error
}

// Log is the append-only, capped, deduplicating play history. Records are
// kept most-recent first, at most ten. A record identical in score, correct
// count, and accuracy to one written within the last five seconds is treated
// as a re-render artifact and dropped.
type Log struct {
	store Store
	now   func() time.Time
}

func NewLog(store Store) *Log {
	return &Log{store: store, now: time.Now}
}

// NewLogWithClock is test-only for deterministic timestamps.
func NewLogWithClock(store Store, now func() time.Time) *Log {
	return &Log{store: store, now: now}
}

// Append records a completed game. Returns false when the record was
// suppressed as a duplicate.
func (l *Log) Append(ctx context.Context, playerID string, rec domain.HistoryRecord) (bool, error) {
	records, err := l.store.Load(ctx, playerID)
	if err != nil {
		return false, err
	}

	now := l.now()
	rec.Timestamp = now
	for _, existing := range records {
		if existing.Score == rec.Score && existing.Correct == rec.Correct && existing.Accuracy == rec.Accuracy {
			if now.Sub(existing.Timestamp) < dedupWindow {
				return false, nil
			}
		}
	}

	updated := append([]domain.HistoryRecord{rec}, records...)
	if len(updated) > maxRecords {
		updated = updated[:maxRecords]
	}
	return true, l.store.Save(ctx, playerID, updated)
}

// List returns the stored history, most-recent first.
func (l *Log) List(ctx context.Context, playerID string) ([]domain.HistoryRecord, error) {
	return l.store.Load(ctx, playerID)
}

// Clear wipes the player's history.
func (l *Log) Clear(ctx context.Context, playerID string) error {
	return l.store.Clear(ctx, playerID)
}
