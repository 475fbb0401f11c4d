package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

const assignmentColumns = `id, title, teacher_id, question_file, solution_file, deadline, total_marks, created_at`

func scanAssignment(sc interface{ Scan(...any) error }) (model.Assignment, error) {
	var a model.Assignment
	err := sc.Scan(&a.ID, &a.Title, &a.TeacherID, &a.QuestionFile, &a.SolutionFile, &a.Deadline, &a.TotalMarks, &a.CreatedAt)
	return a, err
}

// CreateAssignment stores an assignment and returns its ID.
func (s *Store) CreateAssignment(ctx context.Context, a model.Assignment) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(
		`INSERT INTO assignments (title, teacher_id, question_file, solution_file, deadline, total_marks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		a.Title, a.TeacherID, a.QuestionFile, a.SolutionFile, a.Deadline.UTC(), a.TotalMarks, time.Now().UTC(),
	).Scan(&id)
	return id, err
}

// GetAssignment returns an assignment by ID.
func (s *Store) GetAssignment(ctx context.Context, id int64) (model.Assignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, s.q(
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("assignment %d: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAssignments returns all assignments, oldest first.
func (s *Store) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	return s.queryAssignments(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY id`)
}

// ListDueAssignments returns assignments whose deadline is at or before now
// and which still have ungraded submissions.
func (s *Store) ListDueAssignments(ctx context.Context, now time.Time) ([]model.Assignment, error) {
	candidates, err := s.queryAssignments(ctx,
		`SELECT `+assignmentColumns+` FROM assignments a
		 WHERE EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = a.id AND s.graded = FALSE)
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	// Deadline filtering happens here so sqlite's text timestamps never get compared.
	var due []model.Assignment
	for _, a := range candidates {
		if !a.Deadline.After(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetTotalMarks records the assignment's computed marks ceiling.
func (s *Store) SetTotalMarks(ctx context.Context, assignmentID int64, total float64) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE assignments SET total_marks = ? WHERE id = ?`), total, assignmentID)
	if err != nil {
		return err
	}
	return expectRow(res, "assignment", assignmentID)
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
