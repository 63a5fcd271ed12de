package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"castfast/internal/domain"
	"github.com/rs/zerolog"
)

// fakeSubmitter records calls and returns scripted results.
type fakeSubmitter struct {
	mu        sync.Mutex
	calls     int
	lastName  string
	lastScore int
	submitErr error
	waitErr   error
	block     func() // optional rendezvous to hold a submission open
}

func (f *fakeSubmitter) SubmitScore(_ context.Context, name string, score int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastName = name
	f.lastScore = score
	f.mu.Unlock()
	if f.block != nil {
		f.block()
	}
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "0xabc123", nil
}

func (f *fakeSubmitter) WaitConfirmation(_ context.Context, txHash string) (domain.Receipt, error) {
	if f.waitErr != nil {
		return domain.Receipt{}, f.waitErr
	}
	return domain.Receipt{TransactionHash: txHash, BlockNumber: 42}, nil
}

type fakePending struct {
	mu    sync.Mutex
	saved map[string]Request
}

func newFakePending() *fakePending { return &fakePending{saved: make(map[string]Request)} }

func (p *fakePending) Put(_ context.Context, playerID string, req Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved[playerID] = req
	return nil
}

func (p *fakePending) Get(_ context.Context, playerID string) (Request, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	req, ok := p.saved[playerID]
	return req, ok, nil
}

func (p *fakePending) Delete(_ context.Context, playerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.saved, playerID)
	return nil
}

func newTestGateway(server, user *fakeSubmitter) (*Gateway, *fakePending) {
	pending := newFakePending()
	return New(server, user, pending, zerolog.Nop()), pending
}

func TestNegativeScoreRejectedBeforeNetwork(t *testing.T) {
	server := &fakeSubmitter{}
	user := &fakeSubmitter{}
	g, _ := newTestGateway(server, user)

	_, err := g.Submit(context.Background(), Request{DisplayName: "Bob!!", Score: -1, Platform: domain.PlatformWeb})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if server.calls+user.calls != 0 {
		t.Fatalf("validation failure must not reach the network")
	}
}

func TestEmptyNameFallsBackToPlayerID(t *testing.T) {
	server := &fakeSubmitter{}
	user := &fakeSubmitter{}
	g, _ := newTestGateway(server, user)

	_, err := g.Submit(context.Background(), Request{DisplayName: "  !!??  ", Score: 42, PlayerID: "777", Platform: domain.PlatformWeb})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if user.lastName != "User_777" {
		t.Fatalf("want synthesized name User_777, got %q", user.lastName)
	}
}

func TestMobileRoutesThroughRelayWithDecoratedName(t *testing.T) {
	server := &fakeSubmitter{}
	user := &fakeSubmitter{}
	g, _ := newTestGateway(server, user)

	receipt, err := g.Submit(context.Background(), Request{
		DisplayName: "John",
		Score:       120,
		PlayerID:    "12345",
		Platform:    domain.PlatformMobile,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if server.calls != 1 || user.calls != 0 {
		t.Fatalf("mobile must use the server-signed relay (server=%d user=%d)", server.calls, user.calls)
	}
	if server.lastName != "John (ID:12345)" {
		t.Fatalf("want decorated name, got %q", server.lastName)
	}
	if receipt.BlockNumber != 42 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if g.Status() != StatusConfirmed {
		t.Fatalf("want confirmed status, got %s", g.Status())
	}
}

func TestWebRoutesThroughUserWallet(t *testing.T) {
	server := &fakeSubmitter{}
	user := &fakeSubmitter{}
	g, _ := newTestGateway(server, user)

	if _, err := g.Submit(context.Background(), Request{DisplayName: "Ada", Score: 50, Platform: domain.PlatformWeb}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if user.calls != 1 || server.calls != 0 {
		t.Fatalf("web must use the user-signed path (server=%d user=%d)", server.calls, user.calls)
	}
	if user.lastName != "Ada" {
		t.Fatalf("web name must not be decorated, got %q", user.lastName)
	}
}

func TestFailureClassificationAndBackup(t *testing.T) {
	cases := []struct {
		msg    string
		reason domain.TxReason
	}{
		{"user rejected the request", domain.ReasonUserRejected},
		{"insufficient funds for gas", domain.ReasonInsufficientFunds},
		{"execution reverted: score too high", domain.ReasonContractReverted},
		{"dial tcp: connection refused", domain.ReasonNetwork},
	}
	for _, tc := range cases {
		server := &fakeSubmitter{submitErr: errors.New(tc.msg)}
		g, pending := newTestGateway(server, &fakeSubmitter{})

		req := Request{DisplayName: "Zoe", Score: 30, PlayerID: "9", Platform: domain.PlatformMobile}
		_, err := g.Submit(context.Background(), req)
		var txErr *domain.TransactionError
		if !errors.As(err, &txErr) {
			t.Fatalf("%q: want TransactionError, got %v", tc.msg, err)
		}
		if txErr.Reason != tc.reason {
			t.Fatalf("%q: want reason %s, got %s", tc.msg, tc.reason, txErr.Reason)
		}
		if g.Status() != StatusFailed {
			t.Fatalf("want failed status, got %s", g.Status())
		}
		if _, ok, _ := pending.Get(context.Background(), "9"); !ok {
			t.Fatalf("failed payload was not backed up")
		}
	}
}

func TestSingleSubmissionInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	server := &fakeSubmitter{block: func() {
		once.Do(func() { close(started) })
		<-release
	}}
	g, _ := newTestGateway(server, &fakeSubmitter{})

	done := make(chan error, 1)
	go func() {
		_, err := g.Submit(context.Background(), Request{DisplayName: "A", Score: 1, PlayerID: "1", Platform: domain.PlatformMobile})
		done <- err
	}()
	<-started

	_, err := g.Submit(context.Background(), Request{DisplayName: "B", Score: 2, PlayerID: "2", Platform: domain.PlatformMobile})
	if !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Fatalf("want ErrSubmissionInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
}

func TestCleanDisplayName(t *testing.T) {
	now := func() time.Time { return time.UnixMilli(1700000000000) }
	cases := []struct {
		in, player, want string
	}{
		{"  Bob!!  ", "5", "Bob"},
		{"name_with-safe.chars 9", "5", "name_with-safe.chars 9"},
		{"<script>alert(1)</script>", "5", "scriptalert1script"},
		{"", "5", "User_5"},
		{"", "", "User_1700000000000"},
		{strings.Repeat("a", 50), "5", strings.Repeat("a", 32)},
	}
	for _, tc := range cases {
		if got := CleanDisplayName(tc.in, tc.player, now); got != tc.want {
			t.Fatalf("CleanDisplayName(%q, %q): want %q, got %q", tc.in, tc.player, tc.want, got)
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	if got := DetectPlatform("Mozilla/5.0 (iPhone; CPU iPhone OS)", false); got != domain.PlatformMobile {
		t.Fatalf("iphone UA: got %s", got)
	}
	if got := DetectPlatform("Mozilla/5.0 (X11; Linux x86_64)", false); got != domain.PlatformWeb {
		t.Fatalf("desktop UA: got %s", got)
	}
	// Host-provided user context flags the embedded client regardless of UA.
	if got := DetectPlatform("Mozilla/5.0 (X11; Linux x86_64)", true); got != domain.PlatformMobile {
		t.Fatalf("user context: got %s", got)
	}
}
