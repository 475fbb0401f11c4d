package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

// ExportAssignment builds export-ready results for every submission of an assignment.
func (s *Store) ExportAssignment(ctx context.Context, assignmentID int64) (*model.GradeExport, error) {
	a, err := s.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	subs, err := s.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	export := &model.GradeExport{
		AssignmentID: a.ID,
		Title:        a.Title,
		TotalMarks:   a.TotalMarks,
		ExportedAt:   time.Now().UTC(),
		Results:      []model.StudentResult{},
	}

	for _, sub := range subs {
		user, err := s.GetUserByID(ctx, sub.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", sub.StudentID, err)
		}
		var username, displayName string
		if user != nil {
			username = user.Username
			displayName = user.DisplayName
		}

		rows, err := s.ListFeedback(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("list feedback for submission %d: %w", sub.ID, err)
		}
		questions := make([]model.QuestionResult, 0, len(rows))
		for _, r := range rows {
			questions = append(questions, model.QuestionResult{
				QuestionNumber: r.QuestionNumber,
				MaxMarks:       r.MaxMarks,
				ObtainedMarks:  r.ObtainedMarks,
				Feedback:       r.Feedback,
			})
		}

		export.Results = append(export.Results, model.StudentResult{
			SubmissionID: sub.ID,
			Username:     username,
			DisplayName:  displayName,
			SubmittedAt:  sub.SubmittedAt,
			Graded:       sub.Graded,
			GradedAt:     sub.GradedAt,
			Grade:        sub.Grade,
			Questions:    questions,
		})
	}

	return export, nil
}
