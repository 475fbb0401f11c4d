// Package scoring awards marks for a single answer: exact match for
// objective items, a pluggable subjective scorer for everything else.
package scoring

import (
	"context"
	"strings"
)

const (
	feedbackCorrect   = "Objective match: Correct"
	feedbackIncorrect = "Objective match: Incorrect"
)

// Result is the score and feedback for one leaf question.
type Result struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// SubjectiveScorer grades free-text answers. Implementations never fail:
// problems are reported as a zero score with diagnostic feedback.
type SubjectiveScorer interface {
	ScoreSubjective(ctx context.Context, teacherAnswer, studentAnswer string, maxMarks float64) Result
}

// Scorer dispatches between objective and subjective scoring.
type Scorer struct {
	Subjective SubjectiveScorer
}

// New returns a Scorer using s for subjective answers.
func New(s SubjectiveScorer) *Scorer {
	return &Scorer{Subjective: s}
}

// Score grades one answer pair under maxMarks.
func (s *Scorer) Score(ctx context.Context, teacherAnswer, studentAnswer string, maxMarks float64, objective bool) Result {
	if objective {
		return Objective(teacherAnswer, studentAnswer, maxMarks)
	}
	return s.Subjective.ScoreSubjective(ctx, teacherAnswer, studentAnswer, maxMarks)
}

// Objective compares answers ignoring case and surrounding whitespace.
func Objective(teacherAnswer, studentAnswer string, maxMarks float64) Result {
	if strings.EqualFold(strings.TrimSpace(teacherAnswer), strings.TrimSpace(studentAnswer)) {
		return Result{Score: maxMarks, Feedback: feedbackCorrect}
	}
	return Result{Score: 0, Feedback: feedbackIncorrect}
}
