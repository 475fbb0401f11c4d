package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

// ErrMarksOutOfRange is returned when edited marks fall outside [0, max_marks].
var ErrMarksOutOfRange = errors.New("obtained marks out of range")

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveGrading writes a submission's per-question rows, marks it graded and
// recomputes its grade from the persisted rows, all in one transaction.
// Rows are upserted on (submission_id, question_number), so regrading
// overwrites earlier results. It returns the recomputed grade.
func (s *Store) SaveGrading(ctx context.Context, submissionID int64, rows []model.QuestionFeedback, summary string, gradedAt time.Time) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, r := range rows {
		_, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO question_feedback (submission_id, question_number, max_marks, obtained_marks, feedback)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (submission_id, question_number) DO UPDATE SET
			   max_marks = excluded.max_marks,
			   obtained_marks = excluded.obtained_marks,
			   feedback = excluded.feedback`),
			submissionID, r.QuestionNumber, r.MaxMarks, r.ObtainedMarks, r.Feedback,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert feedback %s: %w", r.QuestionNumber, err)
		}
	}

	res, err := tx.ExecContext(ctx, s.q(
		`UPDATE submissions SET graded = TRUE, graded_at = ?, feedback = ? WHERE id = ?`),
		gradedAt.UTC(), summary, submissionID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark graded: %w", err)
	}
	if err := expectRow(res, "submission", submissionID); err != nil {
		return 0, err
	}

	total, err := s.recomputeGrade(ctx, tx, submissionID)
	if err != nil {
		return 0, err
	}
	return total, tx.Commit()
}

// ListFeedback returns a submission's rows in the order they were first written.
func (s *Store) ListFeedback(ctx context.Context, submissionID int64) ([]model.QuestionFeedback, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, submission_id, question_number, max_marks, obtained_marks, feedback
		 FROM question_feedback WHERE submission_id = ? ORDER BY id`), submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.QuestionFeedback
	for rows.Next() {
		var f model.QuestionFeedback
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.QuestionNumber, &f.MaxMarks, &f.ObtainedMarks, &f.Feedback); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateFeedback applies a teacher's edit to one row and recomputes the
// submission grade. It returns the new grade.
func (s *Store) UpdateFeedback(ctx context.Context, submissionID int64, questionNumber string, obtained float64, feedback string) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var maxMarks float64
	err = tx.QueryRowContext(ctx, s.q(
		`SELECT max_marks FROM question_feedback WHERE submission_id = ? AND question_number = ?`),
		submissionID, questionNumber,
	).Scan(&maxMarks)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("feedback %d/%s: %w", submissionID, questionNumber, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if obtained < 0 || obtained > maxMarks {
		return 0, fmt.Errorf("%w: %g not in [0, %g]", ErrMarksOutOfRange, obtained, maxMarks)
	}

	_, err = tx.ExecContext(ctx, s.q(
		`UPDATE question_feedback SET obtained_marks = ?, feedback = ?
		 WHERE submission_id = ? AND question_number = ?`),
		obtained, feedback, submissionID, questionNumber,
	)
	if err != nil {
		return 0, err
	}

	total, err := s.recomputeGrade(ctx, tx, submissionID)
	if err != nil {
		return 0, err
	}
	return total, tx.Commit()
}

// RecomputeGrade sets a submission's grade to the sum of its rows' obtained marks.
func (s *Store) RecomputeGrade(ctx context.Context, submissionID int64) (float64, error) {
	return s.recomputeGrade(ctx, s.db, submissionID)
}

// RecomputeAssignmentGrades recomputes the grade of every graded submission of
// an assignment, picking up rows edited directly in the database. It returns
// the number of submissions updated.
func (s *Store) RecomputeAssignmentGrades(ctx context.Context, assignmentID int64) (int, error) {
	subs, err := s.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("list submissions: %w", err)
	}
	n := 0
	for _, sub := range subs {
		if !sub.Graded {
			continue
		}
		if _, err := s.RecomputeGrade(ctx, sub.ID); err != nil {
			return n, fmt.Errorf("recompute submission %d: %w", sub.ID, err)
		}
		n++
	}
	return n, nil
}

func (s *Store) recomputeGrade(ctx context.Context, eq execQuerier, submissionID int64) (float64, error) {
	var total float64
	err := eq.QueryRowContext(ctx, s.q(
		`SELECT COALESCE(SUM(obtained_marks), 0) FROM question_feedback WHERE submission_id = ?`),
		submissionID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum obtained marks: %w", err)
	}
	if _, err := eq.ExecContext(ctx, s.q(`UPDATE submissions SET grade = ? WHERE id = ?`), total, submissionID); err != nil {
		return 0, fmt.Errorf("update grade: %w", err)
	}
	return total, nil
}
