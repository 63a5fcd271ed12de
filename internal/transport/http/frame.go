package http

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/rs/zerolog"

	"castfast/internal/domain"
	"castfast/internal/game"
)

// FrameHandler serves the stateless card flow: every request carries the full
// session state as a URL-encoded blob, the server holds nothing between
// requests. The client-supplied state is advisory; correctness is always
// recomputed against the bank by question index.
type FrameHandler struct {
	bank    *game.Bank
	baseURL string
	log     zerolog.Logger
}

func NewFrameHandler(bank *game.Bank, baseURL string, log zerolog.Logger) *FrameHandler {
	return &FrameHandler{bank: bank, baseURL: baseURL, log: log}
}

type frameBody struct {
	UntrustedData struct {
		ButtonIndex int         `json:"buttonIndex"`
		State       string      `json:"state"`
		FID         json.Number `json:"fid"`
	} `json:"untrustedData"`
}

func decodeFrameBody(r *http.Request) frameBody {
	var body frameBody
	// A malformed body degrades to the zero value; DecodeState then falls
	// back to a fresh game rather than erroring the card flow.
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

// Question renders the card for the state carried in the query string.
func (h *FrameHandler) Question(w http.ResponseWriter, r *http.Request) {
	state := game.DecodeState(r.URL.Query().Get("state"))
	h.renderQuestion(w, state)
}

// Answer resolves one button press and renders the next card.
func (h *FrameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body := decodeFrameBody(r)
	state := game.DecodeState(body.UntrustedData.State)

	q := h.bank.QuestionAt(state.QuestionIndex)
	if game.IsCorrectIndex(q, body.UntrustedData.ButtonIndex) {
		state.Score++
	}
	state.QuestionIndex++
	state.Round = state.QuestionIndex/game.QuestionsPerRound + 1

	if state.QuestionIndex >= game.TotalQuestions {
		h.log.Info().Str("player", state.PlayerID).Int("score", state.Score).Msg("frame game finished")
		h.renderGameOver(w, state)
		return
	}
	h.renderQuestion(w, state)
}

// Start begins a fresh game for the player named in the frame payload.
func (h *FrameHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body := decodeFrameBody(r)
	state := domain.NewSessionState(body.UntrustedData.FID.String())
	h.renderQuestion(w, state)
}

// Restart is Start under the post-game button.
func (h *FrameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.Start(w, r)
}

// CardImage serves a minimal SVG rendition of the current card so the frame
// host has something to display without an external image service.
func (h *FrameHandler) CardImage(w http.ResponseWriter, r *http.Request) {
	state := game.DecodeState(r.URL.Query().Get("state"))
	title := "Game Over"
	if state.QuestionIndex < game.TotalQuestions {
		title = h.bank.QuestionAt(state.QuestionIndex).Text
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="315">`+
		`<rect width="100%%" height="100%%" fill="#1a1a2e"/>`+
		`<text x="30" y="120" fill="#fff" font-size="24">%s</text>`+
		`<text x="30" y="280" fill="#aaa" font-size="18">Round %d · Score %d</text>`+
		`</svg>`,
		html.EscapeString(title), state.Round, state.Score)
}

func (h *FrameHandler) renderQuestion(w http.ResponseWriter, state domain.SessionState) {
	q := h.bank.QuestionAt(state.QuestionIndex)
	encoded := game.EncodeState(state)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head>\n")
	fmt.Fprintf(w, `<meta property="fc:frame" content="vNext" />`+"\n")
	fmt.Fprintf(w, `<meta property="og:title" content="Question %d of %d" />`+"\n", state.QuestionIndex+1, game.TotalQuestions)
	fmt.Fprintf(w, `<meta property="fc:frame:image" content="%s/frame/card.svg?state=%s" />`+"\n", h.baseURL, encoded)
	for i, opt := range q.Options {
		fmt.Fprintf(w, `<meta property="fc:frame:button:%d" content="%s" />`+"\n", i+1, html.EscapeString(opt))
	}
	fmt.Fprintf(w, `<meta property="fc:frame:post_url" content="%s/frame/answer" />`+"\n", h.baseURL)
	fmt.Fprintf(w, `<meta property="fc:frame:state" content="%s" />`+"\n", encoded)
	fmt.Fprintf(w, "</head><body><h1>%s</h1></body></html>", html.EscapeString(q.Text))
}

func (h *FrameHandler) renderGameOver(w http.ResponseWriter, state domain.SessionState) {
	encoded := game.EncodeState(state)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head>\n")
	fmt.Fprintf(w, `<meta property="fc:frame" content="vNext" />`+"\n")
	fmt.Fprintf(w, `<meta property="og:title" content="Game Over" />`+"\n")
	fmt.Fprintf(w, `<meta property="fc:frame:image" content="%s/frame/card.svg?state=%s" />`+"\n", h.baseURL, encoded)
	fmt.Fprintf(w, `<meta property="fc:frame:button:1" content="Play Again" />`+"\n")
	fmt.Fprintf(w, `<meta property="fc:frame:post_url" content="%s/frame/restart" />`+"\n", h.baseURL)
	fmt.Fprintf(w, `<meta property="fc:frame:state" content="%s" />`+"\n", encoded)
	fmt.Fprintf(w, "</head><body><h1>Game Over! Score: %d</h1></body></html>", state.Score)
}
