package game

import (
	"testing"

	"castfast/internal/domain"
)

func sampleQuestion() domain.Question {
	return domain.Question{
		Text:         "What is the capital of France?",
		Options:      []string{"Paris", "Madrid", "Berlin", "Rome"},
		CorrectIndex: 0,
	}
}

func TestIsCorrectShapesAgree(t *testing.T) {
	q := sampleQuestion()
	for i, opt := range q.Options {
		byIndex := IsCorrectIndex(q, i+1) // frame buttons are 1-based
		byText := IsCorrectOption(q, opt)
		if byIndex != byText {
			t.Fatalf("option %d (%q): index shape %v, text shape %v", i, opt, byIndex, byText)
		}
	}
	if !IsCorrectIndex(q, 1) {
		t.Fatalf("expected button 1 to be correct")
	}
	if IsCorrectIndex(q, 2) {
		t.Fatalf("expected button 2 to be wrong")
	}
}

func TestAnswerBonusSequence(t *testing.T) {
	// Streaks 0..4 before the answer yield 10, 15, 20, 25, 30.
	want := []int{10, 15, 20, 25, 30}
	for streak, expected := range want {
		if got := AnswerBonus(streak); got != expected {
			t.Fatalf("AnswerBonus(%d): want %d, got %d", streak, expected, got)
		}
	}
}

func TestRoundBonus(t *testing.T) {
	for correct := 0; correct <= QuestionsPerRound; correct++ {
		want := 0
		if correct == QuestionsPerRound {
			want = 20
		}
		if got := RoundBonus(correct, QuestionsPerRound); got != want {
			t.Fatalf("RoundBonus(%d): want %d, got %d", correct, want, got)
		}
	}
}

func TestClassifyTableOrdering(t *testing.T) {
	cases := []struct {
		score, correct int
		rank           string
	}{
		{100, 14, "Legend"},   // accuracy 93
		{79, 12, "Expert"},    // accuracy 80: fails Master's score floor, passes Expert
		{10, 15, "Beginner"},  // accuracy 100 but below even Novice's score floor
		{15, 0, "Novice"},
		{50, 9, "Advanced"},   // accuracy 60
		{30, 6, "Good"},       // accuracy 40
		{0, 0, "Beginner"},
	}
	for _, tc := range cases {
		got := Classify(tc.score, tc.correct, TotalQuestions)
		if got.Rank != tc.rank {
			t.Fatalf("Classify(%d, %d): want %s, got %s", tc.score, tc.correct, tc.rank, got.Rank)
		}
		if got.Message == "" {
			t.Fatalf("Classify(%d, %d): empty message", tc.score, tc.correct)
		}
	}
}

func TestAccuracyZeroTotal(t *testing.T) {
	if got := Accuracy(5, 0); got != 0 {
		t.Fatalf("accuracy with zero total: want 0, got %d", got)
	}
	if got := Accuracy(10, 15); got != 67 {
		t.Fatalf("accuracy 10/15: want 67, got %d", got)
	}
}
