package domain

import "time"

// Question is a single trivia item with exactly four options.
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"answer"`
}

// SessionState is the small record carried between stateless frame requests.
// It is also the seed for the interactive in-memory game session.
type SessionState struct {
	Round         int    `json:"round"`
	Score         int    `json:"score"`
	QuestionIndex int    `json:"questionIndex"`
	PlayerID      string `json:"playerFid,omitempty"`
}

// NewSessionState returns the initial state at the start of a game.
func NewSessionState(playerID string) SessionState {
	return SessionState{Round: 1, Score: 0, QuestionIndex: 0, PlayerID: playerID}
}

// LeaderboardEntry is one on-chain score record. The chain owns it; this service only reads.
type LeaderboardEntry struct {
	Index       int    `json:"index"`
	DisplayName string `json:"displayName"`
	Address     string `json:"address"`
	Score       int    `json:"score"`
}

// Receipt reports a confirmed score-submission transaction.
type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     int64  `json:"blockNumber"`
}

// HistoryRecord is one completed game in the local play log.
type HistoryRecord struct {
	Score     int       `json:"score"`
	Correct   int       `json:"correct"`
	Accuracy  int       `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Rank is the final performance classification.
type Rank struct {
	Rank    string `json:"rank"`
	Message string `json:"message"`
}

// Platform identifies the client environment, detected heuristically.
// It routes UX decisions only, never authorization.
type Platform string

const (
	PlatformMobile Platform = "mobile"
	PlatformWeb    Platform = "web"
)
