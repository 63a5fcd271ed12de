package game

import (
	"context"
	"sync"

	"castfast/internal/domain"
)

// Phase is the orchestrator state.
type Phase int

const (
	// PhaseAnswering: a question is on screen and the countdown is running.
	PhaseAnswering Phase = iota
	// PhaseQuestionDone: the question resolved; waiting for Advance.
	PhaseQuestionDone
	// PhaseRoundBreak: a round summary is on screen; NextRound resumes play.
	PhaseRoundBreak
	// PhaseGameOver: terminal.
	PhaseGameOver
)

// QuestionView is what the transport layer shows for the current question.
type QuestionView struct {
	Round          int      `json:"round"`
	QuestionNumber int      `json:"questionNumber"` // 1-based within the round
	Text           string   `json:"question"`
	Options        []string `json:"options"`
	TimeLeft       int      `json:"timeLeft"`
	Epoch          int      `json:"-"`
}

// RoundSummary reports a completed round.
type RoundSummary struct {
	Round          int  `json:"round"`
	CorrectInRound int  `json:"correctInRound"`
	Perfect        bool `json:"perfect"`
	Bonus          int  `json:"bonus"`
}

// FinalResult hands the finished game to the result/history stage.
type FinalResult struct {
	Score    int         `json:"score"`
	Correct  int         `json:"correct"`
	Accuracy int         `json:"accuracy"`
	Rank     domain.Rank `json:"rank"`
}

// AdvanceKind says where the session moved after a question resolved.
type AdvanceKind int

const (
	AdvanceNextQuestion AdvanceKind = iota
	AdvanceRoundBreak
	AdvanceGameOver
)

// Advance describes the transition out of an answered or timed-out question.
type Advance struct {
	Kind    AdvanceKind
	Next    QuestionView // set for AdvanceNextQuestion
	Summary RoundSummary // set for AdvanceRoundBreak and AdvanceGameOver
	Final   FinalResult  // set for AdvanceGameOver
}

// AnswerOutcome is the result of resolving one question.
type AnswerOutcome struct {
	Accepted bool
	Correct  bool
	Bonus    int
	Score    int
	Streak   int
}

// TickResult reports one countdown tick.
type TickResult struct {
	Valid    bool
	TimeLeft int
	TimedOut bool
	Outcome  AnswerOutcome
}

// Session is the interactive game orchestrator: three rounds of five
// questions, a ten-second countdown per question, streak and round bonuses.
// It is driven externally (the websocket loop runs the real ticker) and every
// question carries an epoch so a stale timer cannot fire into the next
// question's state.
type Session struct {
	bank *Bank
	used UsedQuestionStore

	mu             sync.Mutex
	phase          Phase
	round          int
	questions      []domain.Question
	questionIndex  int
	epoch          int
	timeLeft       int
	score          int
	streak         int
	totalCorrect   int
	correctInRound int
}

// NewSession starts a game and draws the first round.
func NewSession(ctx context.Context, bank *Bank, used UsedQuestionStore) (*Session, error) {
	s := &Session{bank: bank, used: used, round: 1, timeLeft: QuestionSeconds}
	questions, err := bank.PickRound(ctx, used, QuestionsPerRound)
	if err != nil && len(questions) == 0 {
		return nil, err
	}
	s.questions = questions
	return s, nil
}

// Current returns the view of the question on screen.
func (s *Session) Current() QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() QuestionView {
	q := s.questions[s.questionIndex]
	return QuestionView{
		Round:          s.round,
		QuestionNumber: s.questionIndex + 1,
		Text:           q.Text,
		Options:        q.Options,
		TimeLeft:       s.timeLeft,
		Epoch:          s.epoch,
	}
}

// Phase returns the current orchestrator state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score returns the running score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Answer resolves the current question with an explicit selection. Only the
// first selection per question counts; anything after it is a no-op until
// Advance moves to the next question.
func (s *Session) Answer(option string) AnswerOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnswering {
		return AnswerOutcome{Accepted: false, Score: s.score, Streak: s.streak}
	}
	correct := IsCorrectOption(s.questions[s.questionIndex], option)
	return s.resolveLocked(correct)
}

// Tick consumes one countdown second for the question identified by epoch.
// Ticks from a previous question (or after an answer) are ignored, which is
// how an early answer deterministically cancels the pending timer.
func (s *Session) Tick(epoch int) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnswering || epoch != s.epoch {
		return TickResult{Valid: false}
	}
	s.timeLeft--
	if s.timeLeft > 0 {
		return TickResult{Valid: true, TimeLeft: s.timeLeft}
	}
	// Countdown exhausted: implicit "no answer".
	out := s.resolveLocked(false)
	return TickResult{Valid: true, TimeLeft: 0, TimedOut: true, Outcome: out}
}

func (s *Session) resolveLocked(correct bool) AnswerOutcome {
	s.phase = PhaseQuestionDone
	s.epoch++ // kill any timer still scheduled for this question

	out := AnswerOutcome{Accepted: true, Correct: correct}
	if correct {
		out.Bonus = AnswerBonus(s.streak)
		s.streak++
		s.score += out.Bonus
		s.totalCorrect++
		s.correctInRound++
	} else {
		s.streak = 0
	}
	out.Score = s.score
	out.Streak = s.streak
	return out
}

// Advance leaves the post-answer pause: next question, round break, or game
// over. Calling it in any other phase is an error.
func (s *Session) Advance() (Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuestionDone {
		return Advance{}, domain.ErrGameOver
	}

	if s.questionIndex+1 < len(s.questions) {
		s.questionIndex++
		s.epoch++
		s.timeLeft = QuestionSeconds
		s.phase = PhaseAnswering
		return Advance{Kind: AdvanceNextQuestion, Next: s.currentLocked()}, nil
	}

	bonus := RoundBonus(s.correctInRound, QuestionsPerRound)
	s.score += bonus
	summary := RoundSummary{
		Round:          s.round,
		CorrectInRound: s.correctInRound,
		Perfect:        bonus > 0,
		Bonus:          bonus,
	}

	if s.round < TotalRounds {
		s.phase = PhaseRoundBreak
		return Advance{Kind: AdvanceRoundBreak, Summary: summary}, nil
	}

	s.phase = PhaseGameOver
	return Advance{
		Kind:    AdvanceGameOver,
		Summary: summary,
		Final: FinalResult{
			Score:    s.score,
			Correct:  s.totalCorrect,
			Accuracy: Accuracy(s.totalCorrect, TotalQuestions),
			Rank:     Classify(s.score, s.totalCorrect, TotalQuestions),
		},
	}, nil
}

// NextRound leaves the round break and draws the next round's questions.
func (s *Session) NextRound(ctx context.Context) (QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundBreak {
		return QuestionView{}, domain.ErrGameOver
	}
	questions, err := s.bank.PickRound(ctx, s.used, QuestionsPerRound)
	if err != nil && len(questions) == 0 {
		return QuestionView{}, err
	}
	s.round++
	s.questions = questions
	s.questionIndex = 0
	s.correctInRound = 0
	s.epoch++
	s.timeLeft = QuestionSeconds
	s.phase = PhaseAnswering
	return s.currentLocked(), nil
}
