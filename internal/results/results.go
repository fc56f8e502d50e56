// Package results turns a submitted quiz into a percentage, a qualitative
// band and a per-question breakdown.
package results

import (
	"math"

	"github.com/abhisek/quizgen/internal/quizgen"
)

// Band is the qualitative classification of a percentage.
type Band string

const (
	BandHigh   Band = "high"   // percentage >= 80
	BandMedium Band = "medium" // 60 <= percentage < 80
	BandLow    Band = "low"    // percentage < 60
)

// Message returns the encouragement shown for the band.
func (b Band) Message() string {
	switch b {
	case BandHigh:
		return "Excellent! Great job!"
	case BandMedium:
		return "Good work! Keep learning!"
	}
	return "Keep practicing! You'll get better!"
}

// Percentage returns round(100 * score / total), rounding halves away from
// zero. A zero total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// BandFor classifies a percentage. Lower bounds are inclusive.
func BandFor(percentage int) Band {
	switch {
	case percentage >= 80:
		return BandHigh
	case percentage >= 60:
		return BandMedium
	}
	return BandLow
}

// QuestionResult is the outcome for one question.
type QuestionResult struct {
	Question quizgen.Question

	// Selected is the recorded answer; Answered is false when none exists.
	Selected quizgen.OptionKey
	Answered bool

	Correct bool
}

// Result summarizes a submitted attempt.
type Result struct {
	Score      int
	Total      int
	Percentage int
	Band       Band
	Questions  []QuestionResult
}

// Summarize builds the Result for a quiz, its answers and the score from
// submission. A question without an answer counts as incorrect. The score
// is clamped to [0, total].
func Summarize(quiz *quizgen.Quiz, answers map[string]quizgen.OptionKey, score int) Result {
	total := len(quiz.Questions)
	score = max(0, min(score, total))

	details := make([]QuestionResult, len(quiz.Questions))
	for i, q := range quiz.Questions {
		selected, answered := answers[q.ID]
		details[i] = QuestionResult{
			Question: q,
			Selected: selected,
			Answered: answered,
			Correct:  answered && selected == q.CorrectAnswer,
		}
	}

	pct := Percentage(score, total)
	return Result{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Band:       BandFor(pct),
		Questions:  details,
	}
}

// Message returns the band's encouragement.
func (r Result) Message() string { return r.Band.Message() }
