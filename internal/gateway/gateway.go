package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"castfast/internal/chain"
	"castfast/internal/domain"
	"github.com/rs/zerolog"
)

const maxDisplayNameLen = 32

// Status is the submission lifecycle state.
type Status string

const (
	StatusIdle                 Status = "idle"
	StatusSubmitting           Status = "submitting"
	StatusAwaitingConfirmation Status = "awaiting-confirmation"
	StatusConfirmed            Status = "confirmed"
	StatusFailed               Status = "failed"
)

// Request is one score submission.
type Request struct {
	DisplayName string          `json:"displayName"`
	Score       int             `json:"score"`
	PlayerID    string          `json:"fid"`
	Platform    domain.Platform `json:"platform"`
}

// PendingStore keeps a best-effort backup of a failed submission payload so a
// manual retry does not need the user to re-enter anything.
type PendingStore interface {
	Put(ctx context.Context, playerID string, req Request) error
	Get(ctx context.Context, playerID string) (Request, bool, error)
	Delete(ctx context.Context, playerID string) error
}

// Gateway routes score submissions onto the chain. Embedded-mobile clients
// relay through the server-held funded key with the player ID appended to the
// display name; web clients go through the user-signed path. One submission
// may be in flight at a time, and a failed submission is never retried
// automatically.
type Gateway struct {
	serverSigned chain.Submitter
	userSigned   chain.Submitter
	pending      PendingStore
	log          zerolog.Logger
	now          func() time.Time

	mu       sync.Mutex
	inFlight bool
	status   Status
}

func New(serverSigned, userSigned chain.Submitter, pending PendingStore, log zerolog.Logger) *Gateway {
	return &Gateway{
		serverSigned: serverSigned,
		userSigned:   userSigned,
		pending:      pending,
		log:          log,
		now:          time.Now,
		status:       StatusIdle,
	}
}

// Status reports the current lifecycle state.
func (g *Gateway) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Gateway) setStatus(s Status) {
	g.mu.Lock()
	g.status = s
	g.mu.Unlock()
}

// Submit validates, routes, and broadcasts one score submission. Validation
// failures short-circuit before any network call. On-chain failures come back
// as TransactionError with a coarse reason code.
func (g *Gateway) Submit(ctx context.Context, req Request) (domain.Receipt, error) {
	if req.Score < 0 {
		return domain.Receipt{}, &domain.ValidationError{Field: "score", Reason: "must be non-negative"}
	}

	name := CleanDisplayName(req.DisplayName, req.PlayerID, g.now)
	if name == "" {
		return domain.Receipt{}, &domain.ValidationError{Field: "displayName", Reason: "empty after sanitization"}
	}

	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		return domain.Receipt{}, domain.ErrSubmissionInFlight
	}
	g.inFlight = true
	g.status = StatusSubmitting
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	}()

	submitter := g.userSigned
	method := "user-signed"
	if req.Platform == domain.PlatformMobile {
		submitter = g.serverSigned
		method = "server-signed"
		// Mobile users share the relay wallet; the player ID keeps each
		// entry unique on the leaderboard.
		name = fmt.Sprintf("%s (ID:%s)", name, req.PlayerID)
	}

	g.log.Info().Str("name", name).Int("score", req.Score).Str("method", method).Msg("submitting score")

	txHash, err := submitter.SubmitScore(ctx, name, req.Score)
	if err != nil {
		return domain.Receipt{}, g.fail(ctx, req, err)
	}

	g.setStatus(StatusAwaitingConfirmation)
	receipt, err := submitter.WaitConfirmation(ctx, txHash)
	if err != nil {
		return domain.Receipt{}, g.fail(ctx, req, err)
	}

	g.setStatus(StatusConfirmed)
	if g.pending != nil {
		_ = g.pending.Delete(ctx, req.PlayerID)
	}
	g.log.Info().Str("tx", receipt.TransactionHash).Int64("block", receipt.BlockNumber).Msg("score confirmed")
	return receipt, nil
}

func (g *Gateway) fail(ctx context.Context, req Request, err error) error {
	g.setStatus(StatusFailed)
	txErr := classifyTxError(err)
	g.log.Error().Err(err).Str("reason", string(txErr.Reason)).Msg("score submission failed")
	if g.pending != nil {
		if perr := g.pending.Put(ctx, req.PlayerID, req); perr != nil {
			g.log.Warn().Err(perr).Msg("could not back up failed submission")
		}
	}
	return txErr
}

// Pending returns the backed-up payload of a previously failed submission.
func (g *Gateway) Pending(ctx context.Context, playerID string) (Request, bool, error) {
	if g.pending == nil {
		return Request{}, false, nil
	}
	return g.pending.Get(ctx, playerID)
}

// CleanDisplayName trims and restricts a display name to a safe character
// set, capping its length. An empty result synthesizes a fallback name from
// the player ID, or from the clock when even that is missing.
func CleanDisplayName(name, playerID string, now func() time.Time) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if len(cleaned) > maxDisplayNameLen {
		cleaned = strings.TrimSpace(cleaned[:maxDisplayNameLen])
	}
	if cleaned != "" {
		return cleaned
	}
	if playerID != "" {
		return "User_" + playerID
	}
	return fmt.Sprintf("User_%d", now().UnixMilli())
}

// DetectPlatform guesses the client environment from the user agent and the
// presence of host-provided user context. It is advisory only and never an
// access-control boundary.
func DetectPlatform(userAgent string, hasUserContext bool) domain.Platform {
	ua := strings.ToLower(userAgent)
	if hasUserContext || strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		return domain.PlatformMobile
	}
	return domain.PlatformWeb
}

// classifyTxError maps an underlying failure onto a coarse reason code by
// pattern-matching its message.
func classifyTxError(err error) *domain.TransactionError {
	msg := strings.ToLower(err.Error())
	reason := domain.ReasonNetwork
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"), strings.Contains(msg, "rejected by user"):
		reason = domain.ReasonUserRejected
	case strings.Contains(msg, "insufficient funds"):
		reason = domain.ReasonInsufficientFunds
	case strings.Contains(msg, "revert"):
		reason = domain.ReasonContractReverted
	case strings.Contains(msg, "invalid argument"):
		reason = domain.ReasonValidation
	}
	return &domain.TransactionError{Reason: reason, Err: err}
}
