package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

const submissionColumns = `id, assignment_id, student_id, submitted_file, submitted_at, grade, feedback, graded, graded_at`

func scanSubmission(sc interface{ Scan(...any) error }) (model.Submission, error) {
	var sub model.Submission
	err := sc.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.SubmittedFile, &sub.SubmittedAt,
		&sub.Grade, &sub.Feedback, &sub.Graded, &sub.GradedAt)
	return sub, err
}

// CreateSubmission stores an ungraded submission and returns its ID.
func (s *Store) CreateSubmission(ctx context.Context, sub model.Submission) (int64, error) {
	submittedAt := sub.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(
		`INSERT INTO submissions (assignment_id, student_id, submitted_file, submitted_at)
		 VALUES (?, ?, ?, ?) RETURNING id`),
		sub.AssignmentID, sub.StudentID, sub.SubmittedFile, submittedAt.UTC(),
	).Scan(&id)
	return id, err
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id int64) (model.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, s.q(
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return sub, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	return sub, err
}

// ListSubmissions returns all submissions for an assignment, oldest first.
func (s *Store) ListSubmissions(ctx context.Context, assignmentID int64) ([]model.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE assignment_id = ? ORDER BY id`, assignmentID)
}

// ListUngradedSubmissions returns the assignment's submissions not yet graded.
func (s *Store) ListUngradedSubmissions(ctx context.Context, assignmentID int64) ([]model.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE assignment_id = ? AND graded = FALSE ORDER BY id`, assignmentID)
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// GetSubmissionView returns a submission with its assignment and feedback rows.
func (s *Store) GetSubmissionView(ctx context.Context, id int64) (*model.SubmissionView, error) {
	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := s.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ListFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionView{Submission: sub, Assignment: a, Rows: rows}, nil
}
