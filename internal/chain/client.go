package chain

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"castfast/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options tunes the leaderboard client. Zero values fall back to the
// defaults the public endpoints tolerate.
type Options struct {
	BatchSize      int           // per-entry fallback reads per batch
	BatchDelay     time.Duration // pause between batches, soft rate limiting
	RetryAttempts  int           // attempts per read call
	RetryBaseDelay time.Duration // first backoff delay, doubles per attempt
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 3
	}
	if o.BatchDelay <= 0 {
		o.BatchDelay = 800 * time.Millisecond
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = time.Second
	}
	return o
}

// FetchResult is the outcome of one leaderboard read. Partial is set when
// some entries could not be read; the rest are still usable.
type FetchResult struct {
	Entries  []domain.LeaderboardEntry `json:"entries"`
	Expected int                       `json:"expected"`
	Partial  bool                      `json:"partial"`
}

// Client reads the on-chain leaderboard through the first healthy endpoint
// from an ordered candidate list, with retry, batched fallback reads, and an
// owner-gated delete path. Reads are pure; the caller re-fetches on demand.
type Client struct {
	endpoints []string
	chainID   int64
	owner     string
	dial      func(url string) Backend
	opts      Options
	log       zerolog.Logger

	sf singleflight.Group

	mu       sync.Mutex
	resolved Backend
}

// NewClient builds a leaderboard client. dial is injectable so tests can
// substitute fake backends per endpoint.
func NewClient(endpoints []string, chainID int64, owner string, dial func(url string) Backend, opts Options, log zerolog.Logger) *Client {
	return &Client{
		endpoints: endpoints,
		chainID:   chainID,
		owner:     owner,
		dial:      dial,
		opts:      opts.withDefaults(),
		log:       log,
	}
}

// Resolve walks the candidate endpoints in order and returns the first one
// that reports the expected chain and answers a liveness probe. The result
// is cached until Invalidate.
func (c *Client) Resolve(ctx context.Context) (Backend, error) {
	c.mu.Lock()
	if c.resolved != nil {
		b := c.resolved
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	var lastErr error
	for _, url := range c.endpoints {
		backend := c.dial(url)

		id, err := backend.ChainID(ctx)
		if err != nil {
			c.log.Warn().Str("endpoint", url).Err(err).Msg("endpoint unreachable")
			lastErr = err
			continue
		}
		if id != c.chainID {
			c.log.Warn().Str("endpoint", url).Int64("chainId", id).Int64("want", c.chainID).Msg("wrong network")
			lastErr = errors.New("wrong network")
			continue
		}
		block, err := backend.BlockNumber(ctx)
		if err != nil {
			c.log.Warn().Str("endpoint", url).Err(err).Msg("liveness probe failed")
			lastErr = err
			continue
		}
		c.log.Info().Str("endpoint", url).Int64("block", block).Msg("endpoint selected")

		c.mu.Lock()
		c.resolved = backend
		c.mu.Unlock()
		return backend, nil
	}
	return nil, &domain.ConnectivityError{Tried: len(c.endpoints), Last: lastErr}
}

// Invalidate drops the cached endpoint so the next call re-resolves.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.resolved = nil
	c.mu.Unlock()
}

func (c *Client) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.RetryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.opts.RetryAttempts-1)), ctx))
}

// FetchAll returns every readable leaderboard entry, sorted by score
// descending (stable on ties, original index order preserved). Entries with
// negative scores are filtered. Concurrent callers share one fetch.
func (c *Client) FetchAll(ctx context.Context) (FetchResult, error) {
	v, err, _ := c.sf.Do("leaderboard", func() (any, error) {
		return c.fetchAll(ctx)
	})
	if err != nil {
		return FetchResult{}, err
	}
	return v.(FetchResult), nil
}

func (c *Client) fetchAll(ctx context.Context) (FetchResult, error) {
	backend, err := c.Resolve(ctx)
	if err != nil {
		return FetchResult{}, err
	}

	var total int
	err = c.withRetry(ctx, func() error {
		var err error
		total, err = backend.GetTotalEntries(ctx)
		return err
	})
	if err != nil {
		c.Invalidate()
		return FetchResult{}, &domain.ConnectivityError{Tried: 1, Last: err}
	}

	result := FetchResult{Expected: total}
	if total == 0 {
		return result, nil
	}

	entries, err := c.bulkRead(ctx, backend)
	if err != nil {
		c.log.Warn().Err(err).Msg("bulk read failed, falling back to per-entry reads")
		entries = c.entryByEntry(ctx, backend, total)
	}

	if len(entries) < total {
		c.log.Warn().Int("expected", total).Int("got", len(entries)).Msg("partial leaderboard read")
		result.Partial = true
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Score >= 0 {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	result.Entries = kept
	return result, nil
}

func (c *Client) bulkRead(ctx context.Context, backend Backend) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	err := c.withRetry(ctx, func() error {
		var err error
		entries, err = backend.GetAllEntries(ctx)
		if errors.Is(err, ErrBulkUnsupported) {
			return backoff.Permanent(err)
		}
		return err
	})
	return entries, err
}

// entryByEntry reads entries in small concurrent batches with a delay between
// batches. Reads within a batch run concurrently; each result is tagged with
// its index, so completion order does not matter. Individual failures are
// logged and skipped, never fatal.
func (c *Client) entryByEntry(ctx context.Context, backend Backend, total int) []domain.LeaderboardEntry {
	results := make([]*domain.LeaderboardEntry, total)

	for start := 0; start < total; start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for index := start; index < end; index++ {
			index := index
			g.Go(func() error {
				var entry domain.LeaderboardEntry
				err := c.withRetry(gctx, func() error {
					var err error
					entry, err = backend.GetEntry(gctx, index)
					return err
				})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					c.log.Warn().Int("index", index).Err(err).Msg("entry read failed, skipping")
					return nil
				}
				results[index] = &entry
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			break
		}

		if end < total {
			select {
			case <-ctx.Done():
				return collect(results)
			case <-time.After(c.opts.BatchDelay):
			}
		}
	}
	return collect(results)
}

func collect(results []*domain.LeaderboardEntry) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries
}

// DeleteEntries removes leaderboard rows by storage index. It is owner-gated:
// the caller's verified wallet address must equal the configured owner. A
// single index uses the single-delete call; several use the batch call.
func (c *Client) DeleteEntries(ctx context.Context, caller string, indices []int) (domain.Receipt, error) {
	if !c.IsOwner(caller) {
		return domain.Receipt{}, domain.ErrNotOwner
	}
	if len(indices) == 0 {
		return domain.Receipt{}, &domain.ValidationError{Field: "indices", Reason: "no entries selected"}
	}

	backend, err := c.Resolve(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	if len(indices) == 1 {
		return backend.DeleteEntry(ctx, indices[0])
	}
	return backend.DeleteMultipleEntries(ctx, indices)
}

// IsOwner checks a caller address against the configured owner address.
// Address comparison is case-insensitive; the heuristic platform detection
// is never consulted here.
func (c *Client) IsOwner(caller string) bool {
	return c.owner != "" && strings.EqualFold(caller, c.owner)
}
