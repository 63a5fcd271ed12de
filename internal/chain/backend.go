package chain

import (
	"context"

	"castfast/internal/domain"
)

// Backend is the fixed read/write surface of the leaderboard contract. The
// contract itself is an opaque external service; wrong-network and liveness
// probing happen through ChainID and BlockNumber before any contract call.
// GetAllEntries is optional: backends without a bulk read return
// ErrBulkUnsupported and the client degrades to per-entry reads.
type Backend interface {
	ChainID(ctx context.Context) (int64, error)
	BlockNumber(ctx context.Context) (int64, error)

	GetTotalEntries(ctx context.Context) (int, error)
	GetEntry(ctx context.Context, index int) (domain.LeaderboardEntry, error)
	GetAllEntries(ctx context.Context) ([]domain.LeaderboardEntry, error)

	DeleteEntry(ctx context.Context, index int) (domain.Receipt, error)
	DeleteMultipleEntries(ctx context.Context, indices []int) (domain.Receipt, error)
}

// Submitter broadcasts one score transaction and reports its confirmation.
// The two-step shape lets callers surface an "awaiting confirmation" state
// between broadcast and receipt.
type Submitter interface {
	SubmitScore(ctx context.Context, displayName string, score int) (txHash string, err error)
	WaitConfirmation(ctx context.Context, txHash string) (domain.Receipt, error)
}
