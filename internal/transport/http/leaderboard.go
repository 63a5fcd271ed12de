package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"castfast/internal/chain"
	"castfast/internal/domain"
)

// LeaderboardHandler serves reads of the on-chain leaderboard and the
// owner-gated delete operation.
type LeaderboardHandler struct {
	client       *chain.Client
	refreshDelay time.Duration
	log          zerolog.Logger
}

func NewLeaderboardHandler(client *chain.Client, refreshDelay time.Duration, log zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{client: client, refreshDelay: refreshDelay, log: log}
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
	Partial bool                      `json:"partial"`
	Warning string                    `json:"warning,omitempty"`
}

// List handles GET /leaderboard.
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	result, err := h.client.FetchAll(r.Context())
	if err != nil {
		var connErr *domain.ConnectivityError
		if errors.As(err, &connErr) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "leaderboard unreachable", Details: connErr.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "leaderboard read failed", Details: err.Error()})
		return
	}

	resp := leaderboardResponse{Entries: result.Entries, Partial: result.Partial}
	if result.Partial {
		resp.Warning = fmt.Sprintf("read %d of %d entries", len(result.Entries), result.Expected)
	}
	writeJSON(w, http.StatusOK, resp)
}

type deleteRequest struct {
	Address string `json:"address"`
	Indices []int  `json:"indices"`
}

// Delete handles POST /leaderboard/delete. After a successful delete the
// chain needs a moment before reads reflect it, so the fresh list is fetched
// after a short delay.
func (h *LeaderboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	if len(req.Indices) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no indices to delete"})
		return
	}

	receipt, err := h.client.DeleteEntries(r.Context(), req.Address, req.Indices)
	if err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "only the leaderboard owner can delete entries"})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "delete failed", Details: err.Error()})
		return
	}
	h.log.Info().Str("tx", receipt.TransactionHash).Ints("indices", req.Indices).Msg("leaderboard entries deleted")

	select {
	case <-time.After(h.refreshDelay):
	case <-r.Context().Done():
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "transactionHash": receipt.TransactionHash})
		return
	}

	h.client.Invalidate()
	result, err := h.client.FetchAll(r.Context())
	if err != nil {
		// The delete itself went through; report it even if the refresh read failed.
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "transactionHash": receipt.TransactionHash})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"transactionHash": receipt.TransactionHash,
		"entries":         result.Entries,
		"partial":         result.Partial,
	})
}
