package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"castfast/internal/domain"
)

// ErrBulkUnsupported is returned by backends that expose only the
// single-entry read.
var ErrBulkUnsupported = errors.New("bulk getAllEntries not supported")

const zeroAddress = "0x0000000000000000000000000000000000000000"

// RPCBackend talks JSON-RPC 2.0 to a leaderboard gateway node. Network
// identity and liveness use the standard eth_ methods; contract operations
// are exposed under the leaderboard_ namespace with plain JSON payloads.
type RPCBackend struct {
	url      string
	contract string
	signer   string
	httpc    *http.Client
}

// DialRPC builds a backend for one candidate endpoint. signer is the funded
// server key identifier used for write calls; read-only clients pass "".
func DialRPC(url, contract, signer string) *RPCBackend {
	return &RPCBackend{
		url:      url,
		contract: contract,
		signer:   signer,
		httpc:    &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (b *RPCBackend) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", method, resp.StatusCode)
	}
	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("call %s: decode: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("call %s: %w", method, decoded.Error)
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("call %s: decode result: %w", method, err)
		}
	}
	return nil
}

func parseHexQuantity(raw string) (int64, error) {
	s := strings.TrimPrefix(raw, "0x")
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	return strconv.ParseInt(s, 16, 64)
}

func (b *RPCBackend) ChainID(ctx context.Context) (int64, error) {
	var raw string
	if err := b.call(ctx, "eth_chainId", []any{}, &raw); err != nil {
		return 0, err
	}
	return parseHexQuantity(raw)
}

func (b *RPCBackend) BlockNumber(ctx context.Context) (int64, error) {
	var raw string
	if err := b.call(ctx, "eth_blockNumber", []any{}, &raw); err != nil {
		return 0, err
	}
	return parseHexQuantity(raw)
}

func (b *RPCBackend) GetTotalEntries(ctx context.Context) (int, error) {
	var total int
	err := b.call(ctx, "leaderboard_getTotalEntries", []any{b.contract}, &total)
	return total, err
}

// wireEntry tolerates the looser field shapes the gateway emits.
type wireEntry struct {
	DisplayName string `json:"displayName"`
	User        string `json:"user"`
	Score       *int   `json:"score"`
}

func (w wireEntry) toEntry(index int) domain.LeaderboardEntry {
	entry := domain.LeaderboardEntry{
		Index:       index,
		DisplayName: w.DisplayName,
		Address:     w.User,
	}
	if entry.DisplayName == "" {
		entry.DisplayName = fmt.Sprintf("Player %d", index+1)
	}
	if entry.Address == "" {
		entry.Address = zeroAddress
	}
	if w.Score != nil {
		entry.Score = *w.Score
	}
	return entry
}

func (b *RPCBackend) GetEntry(ctx context.Context, index int) (domain.LeaderboardEntry, error) {
	var raw wireEntry
	if err := b.call(ctx, "leaderboard_getEntry", []any{b.contract, index}, &raw); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return raw.toEntry(index), nil
}

func (b *RPCBackend) GetAllEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var raws []wireEntry
	if err := b.call(ctx, "leaderboard_getAllEntries", []any{b.contract}, &raws); err != nil {
		var rerr *rpcError
		if errors.As(err, &rerr) && rerr.Code == -32601 { // method not found
			return nil, ErrBulkUnsupported
		}
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(raws))
	for i, raw := range raws {
		entries = append(entries, raw.toEntry(i))
	}
	return entries, nil
}

func (b *RPCBackend) SubmitScore(ctx context.Context, displayName string, score int) (string, error) {
	if b.contract == "" {
		return "", &domain.ConfigurationError{Detail: "leaderboard contract address not set"}
	}
	var txHash string
	err := b.call(ctx, "leaderboard_submitScore", []any{b.contract, b.signer, displayName, score}, &txHash)
	return txHash, err
}

type wireReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     int64  `json:"blockNumber"`
	Status          string `json:"status"`
}

// WaitConfirmation polls for the transaction receipt until the context
// expires.
func (b *RPCBackend) WaitConfirmation(ctx context.Context, txHash string) (domain.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		var raw *wireReceipt
		if err := b.call(ctx, "leaderboard_getReceipt", []any{txHash}, &raw); err != nil {
			return domain.Receipt{}, err
		}
		if raw != nil {
			if raw.Status == "reverted" {
				return domain.Receipt{}, fmt.Errorf("transaction %s reverted", txHash)
			}
			return domain.Receipt{TransactionHash: raw.TransactionHash, BlockNumber: raw.BlockNumber}, nil
		}
		select {
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *RPCBackend) DeleteEntry(ctx context.Context, index int) (domain.Receipt, error) {
	var txHash string
	if err := b.call(ctx, "leaderboard_deleteEntry", []any{b.contract, b.signer, index}, &txHash); err != nil {
		return domain.Receipt{}, err
	}
	return b.WaitConfirmation(ctx, txHash)
}

func (b *RPCBackend) DeleteMultipleEntries(ctx context.Context, indices []int) (domain.Receipt, error) {
	var txHash string
	if err := b.call(ctx, "leaderboard_deleteMultipleEntries", []any{b.contract, b.signer, indices}, &txHash); err != nil {
		return domain.Receipt{}, err
	}
	return b.WaitConfirmation(ctx, txHash)
}
