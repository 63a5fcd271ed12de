package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"castfast/internal/domain"
	"castfast/internal/gateway"
)

// ScoreHandler exposes the submission gateway over REST. The endpoint is
// called cross-origin from embedded clients, so CORS answers permissively.
type ScoreHandler struct {
	gateway *gateway.Gateway
	log     zerolog.Logger
}

func NewScoreHandler(gw *gateway.Gateway, log zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{gateway: gw, log: log}
}

type submitResponse struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	BlockNumber     int64  `json:"blockNumber"`
	DisplayName     string `json:"displayName"`
	Score           int    `json:"score"`
	Method          string `json:"method"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func allowCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// Submit handles POST /submit-score and the OPTIONS preflight.
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req gateway.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	if req.Platform == "" {
		req.Platform = gateway.DetectPlatform(r.UserAgent(), req.PlayerID != "")
	}

	receipt, err := h.gateway.Submit(r.Context(), req)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	method := "user-signed"
	if req.Platform == domain.PlatformMobile {
		method = "server-signed"
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:         true,
		TransactionHash: receipt.TransactionHash,
		BlockNumber:     receipt.BlockNumber,
		DisplayName:     req.DisplayName,
		Score:           req.Score,
		Method:          method,
	})
}

// Pending handles GET /submit-score/pending?fid=… and returns the backed-up
// payload of a previously failed submission, if any.
func (h *ScoreHandler) Pending(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)
	playerID := r.URL.Query().Get("fid")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing fid"})
		return
	}
	req, ok, err := h.gateway.Pending(r.Context(), playerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load pending submission", Details: err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no pending submission"})
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *ScoreHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	var txErr *domain.TransactionError
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Error()})
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &cfgErr):
		h.log.Error().Err(err).Msg("submission misconfigured")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: cfgErr.Error()})
	case errors.As(err, &txErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: txErr.Reason.Message(), Details: string(txErr.Reason)})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "score submission failed", Details: err.Error()})
	}
}
