package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"castfast/internal/domain"
	"castfast/internal/game"
	"castfast/internal/history"
)

const roundBreakTicks = 2

// GameHandler runs the interactive flow over a websocket: the server pushes
// the question and the countdown, the client sends answers. One connection is
// one game. All writes happen from the single per-connection loop, so the
// connection never sees concurrent writers.
type GameHandler struct {
	bank     *game.Bank
	used     game.UsedQuestionStore
	history  *history.Log
	interval time.Duration
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewGameHandler(bank *game.Bank, used game.UsedQuestionStore, hist *history.Log, log zerolog.Logger) *GameHandler {
	return &GameHandler{
		bank:     bank,
		used:     used,
		history:  hist,
		interval: time.Second,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type answerResultPayload struct {
	Correct  bool `json:"correct"`
	TimedOut bool `json:"timedOut"`
	Bonus    int  `json:"bonus"`
	Score    int  `json:"score"`
	Streak   int  `json:"streak"`
}

type tickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type gameOverPayload struct {
	game.FinalResult
	Stored bool `json:"stored"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives one full game to completion.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("fid")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := game.NewSession(r.Context(), h.bank, h.used)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	gameID := uuid.NewString()
	log := h.log.With().Str("game", gameID).Str("player", playerID).Logger()
	log.Info().Msg("game started")

	inbound := make(chan inboundMessage)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-r.Context().Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	view := session.Current()
	epoch := view.Epoch
	if err := conn.WriteJSON(outboundMessage{Type: "question", Payload: view}); err != nil {
		return
	}
	breakLeft := 0

	for {
		select {
		case <-readerDone:
			log.Info().Int("score", session.Score()).Msg("client left mid-game")
			return

		case msg := <-inbound:
			if msg.Type != "answer" {
				_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			out := session.Answer(payload.Option)
			if !out.Accepted {
				// Second selection on the same question, or a late answer.
				continue
			}
			if err := conn.WriteJSON(outboundMessage{Type: "answerResult", Payload: answerResultPayload{
				Correct: out.Correct,
				Bonus:   out.Bonus,
				Score:   out.Score,
				Streak:  out.Streak,
			}}); err != nil {
				return
			}

		case <-ticker.C:
			switch session.Phase() {
			case game.PhaseAnswering:
				res := session.Tick(epoch)
				if !res.Valid {
					continue
				}
				if res.TimedOut {
					if err := conn.WriteJSON(outboundMessage{Type: "answerResult", Payload: answerResultPayload{
						TimedOut: true,
						Score:    res.Outcome.Score,
						Streak:   res.Outcome.Streak,
					}}); err != nil {
						return
					}
					continue
				}
				if err := conn.WriteJSON(outboundMessage{Type: "tick", Payload: tickPayload{TimeLeft: res.TimeLeft}}); err != nil {
					return
				}

			case game.PhaseQuestionDone:
				adv, err := session.Advance()
				if err != nil {
					return
				}
				switch adv.Kind {
				case game.AdvanceNextQuestion:
					epoch = adv.Next.Epoch
					if err := conn.WriteJSON(outboundMessage{Type: "question", Payload: adv.Next}); err != nil {
						return
					}
				case game.AdvanceRoundBreak:
					breakLeft = roundBreakTicks
					if err := conn.WriteJSON(outboundMessage{Type: "roundSummary", Payload: adv.Summary}); err != nil {
						return
					}
				case game.AdvanceGameOver:
					if err := conn.WriteJSON(outboundMessage{Type: "roundSummary", Payload: adv.Summary}); err != nil {
						return
					}
					stored := h.recordGame(r, playerID, adv.Final, log)
					_ = conn.WriteJSON(outboundMessage{Type: "gameOver", Payload: gameOverPayload{FinalResult: adv.Final, Stored: stored}})
					log.Info().Int("score", adv.Final.Score).Str("rank", adv.Final.Rank.Rank).Msg("game finished")
					return
				}

			case game.PhaseRoundBreak:
				breakLeft--
				if breakLeft > 0 {
					continue
				}
				next, err := session.NextRound(r.Context())
				if err != nil {
					_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
					return
				}
				epoch = next.Epoch
				if err := conn.WriteJSON(outboundMessage{Type: "question", Payload: next}); err != nil {
					return
				}
			}
		}
	}
}

func (h *GameHandler) recordGame(r *http.Request, playerID string, final game.FinalResult, log zerolog.Logger) bool {
	if h.history == nil || playerID == "" {
		return false
	}
	added, err := h.history.Append(r.Context(), playerID, domain.HistoryRecord{
		Score:    final.Score,
		Correct:  final.Correct,
		Accuracy: final.Accuracy,
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not record game history")
		return false
	}
	return added
}
