package game

import (
	"math"

	"castfast/internal/domain"
)

const (
	QuestionsPerRound = 5
	TotalRounds       = 3
	TotalQuestions    = QuestionsPerRound * TotalRounds
	QuestionSeconds   = 10

	baseAnswerPoints = 10
	streakStepPoints = 5
	perfectRoundBonus = 20
)

// IsCorrectIndex checks a frame-flow answer. Frame buttons are 1-indexed by
// the host platform, so button n maps to option n-1.
func IsCorrectIndex(q domain.Question, buttonIndex int) bool {
	return buttonIndex == q.CorrectIndex+1
}

// IsCorrectOption checks an interactive-flow answer by option text.
func IsCorrectOption(q domain.Question, option string) bool {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return false
	}
	return option == q.Options[q.CorrectIndex]
}

// AnswerBonus returns the points awarded for a correct answer given the streak
// before this answer: 10 base, plus (newStreak-1)*5 once the streak reaches 2.
// Wrong answers award nothing and reset the streak; callers handle that.
func AnswerBonus(streakBefore int) int {
	bonus := baseAnswerPoints
	newStreak := streakBefore + 1
	if newStreak >= 2 {
		bonus += (newStreak - 1) * streakStepPoints
	}
	return bonus
}

// RoundBonus awards the perfect-round bonus.
func RoundBonus(correctInRound, questionsPerRound int) int {
	if correctInRound == questionsPerRound {
		return perfectRoundBonus
	}
	return 0
}

// Accuracy is the rounded percentage of correct answers. Zero total questions
// defines accuracy as 0.
func Accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

type rankThreshold struct {
	minScore    int
	minAccuracy int
	rank        string
	message     string
}

// Ordered top-down; the first rank whose both thresholds hold wins.
var rankTable = []rankThreshold{
	{100, 90, "Legend", "Perfect Master!"},
	{80, 80, "Master", "Outstanding!"},
	{70, 70, "Expert", "Excellent Work!"},
	{50, 60, "Advanced", "Great Job!"},
	{30, 40, "Good", "Good Effort!"},
	{15, 0, "Novice", "Nice Try!"},
}

// Classify maps a final score and correct count onto the rank table.
func Classify(score, correct, total int) domain.Rank {
	accuracy := Accuracy(correct, total)
	for _, t := range rankTable {
		if score >= t.minScore && accuracy >= t.minAccuracy {
			return domain.Rank{Rank: t.rank, Message: t.message}
		}
	}
	return domain.Rank{Rank: "Beginner", Message: "Keep Practicing!"}
}
