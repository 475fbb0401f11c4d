// Package grading scores a student's answer sheet against a teacher's
// solution and persists the results.
package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelanni/autograder/internal/questionbank"
	"github.com/pavelanni/autograder/internal/scoring"
)

// AnswerScorer grades one leaf answer. *scoring.Scorer implements it.
type AnswerScorer interface {
	Score(ctx context.Context, teacherAnswer, studentAnswer string, maxMarks float64, objective bool) scoring.Result
}

// Row is the result for one top-level question.
type Row struct {
	QuestionNumber string  `json:"question_number"`
	MaxMarks       float64 `json:"max_marks"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	Feedback       string  `json:"feedback"`
}

// Outcome is a graded submission before persistence.
type Outcome struct {
	Rows          []Row   `json:"rows"`
	TotalObtained float64 `json:"total_obtained"`
}

// MaxMarks sums the ceilings of all rows.
func (o Outcome) MaxMarks() float64 {
	var total float64
	for _, r := range o.Rows {
		total += r.MaxMarks
	}
	return total
}

// Orchestrator walks a teacher bank and scores each leaf against the
// student's answer. Leaves are scored one at a time.
type Orchestrator struct {
	scorer AnswerScorer
}

func NewOrchestrator(s AnswerScorer) *Orchestrator {
	return &Orchestrator{scorer: s}
}

// GradeSubmission scores student against teacher. Rows follow the teacher's
// document order. A missing student question or sub-question is scored as
// an empty answer. Only 1-mark sub-questions are scored objectively.
func (o *Orchestrator) GradeSubmission(ctx context.Context, teacher, student *questionbank.Bank) Outcome {
	out := Outcome{Rows: make([]Row, 0, teacher.Len())}
	for _, tq := range teacher.Questions() {
		sq, _ := student.Question(tq.ID)
		row := Row{QuestionNumber: tq.ID}

		if !tq.HasSubQuestions() {
			row.MaxMarks = float64(tq.MaxMarks)
			res := o.scorer.Score(ctx, tq.Answer, sq.Answer, row.MaxMarks, false)
			row.ObtainedMarks = res.Score
			row.Feedback = res.Feedback
			out.TotalObtained += res.Score
			out.Rows = append(out.Rows, row)
			continue
		}

		parts := make([]string, 0, len(tq.Subs))
		for _, ts := range tq.Subs {
			ss, _ := sq.SubQuestion(ts.ID)
			ceiling := float64(ts.MaxMarks)
			res := o.scorer.Score(ctx, ts.Answer, ss.Answer, ceiling, ts.MaxMarks == 1)
			row.MaxMarks += ceiling
			row.ObtainedMarks += res.Score
			out.TotalObtained += res.Score
			parts = append(parts, fmt.Sprintf("(%s) %s", ts.ID, res.Feedback))
		}
		row.Feedback = strings.Join(parts, " | ")
		out.Rows = append(out.Rows, row)
	}
	return out
}

// TotalMarks is the bank's ceiling: each question contributes the sum of its
// sub-question marks, or its own marks when it has none.
func TotalMarks(bank *questionbank.Bank) int {
	total := 0
	for _, q := range bank.Questions() {
		if !q.HasSubQuestions() {
			total += q.MaxMarks
			continue
		}
		for _, s := range q.Subs {
			total += s.MaxMarks
		}
	}
	return total
}
