package game

import (
	"encoding/json"
	"net/url"
	"strconv"

	"castfast/internal/domain"
)

// EncodeState serializes a session state into a URL-component-escaped JSON
// blob, suitable for embedding in frame metadata and query strings.
func EncodeState(state domain.SessionState) string {
	data, _ := json.Marshal(state)
	return url.QueryEscape(string(data))
}

// DecodeState parses a state blob back into a SessionState. The input is
// untrusted and may arrive raw or URL-escaped; every missing or malformed
// field falls back to its initial value instead of failing. Decoded state is
// advisory: gameplay decisions are recomputed from QuestionIndex against the
// question bank, never taken from a client-supplied score.
func DecodeState(raw string) domain.SessionState {
	state := domain.NewSessionState("")
	if raw == "" {
		return state
	}

	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		unescaped = raw
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(unescaped), &fields); err != nil {
		return state
	}

	if round, ok := intField(fields, "round"); ok && round >= 1 {
		state.Round = round
	}
	if score, ok := intField(fields, "score"); ok && score >= 0 {
		state.Score = score
	}
	if idx, ok := intField(fields, "questionIndex"); ok && idx >= 0 {
		state.QuestionIndex = idx
	}
	state.PlayerID = stringField(fields, "playerFid")
	return state
}

// intField reads a numeric field tolerantly; hosts are known to send numbers
// both as JSON numbers and as quoted strings.
func intField(fields map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
