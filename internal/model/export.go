package model

import "time"

// GradeExport is the top-level structure for exporting an assignment's grades.
type GradeExport struct {
	AssignmentID int64           `json:"assignment_id"`
	Title        string          `json:"title"`
	TotalMarks   float64         `json:"total_marks"`
	ExportedAt   time.Time       `json:"exported_at"`
	Results      []StudentResult `json:"results"`
}

// StudentResult holds one student's graded submission for export.
type StudentResult struct {
	SubmissionID int64            `json:"submission_id"`
	Username     string           `json:"username"`
	DisplayName  string           `json:"display_name"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	Graded       bool             `json:"graded"`
	GradedAt     *time.Time       `json:"graded_at,omitempty"`
	Grade        float64          `json:"grade"`
	Questions    []QuestionResult `json:"questions"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	QuestionNumber string  `json:"question_number"`
	MaxMarks       float64 `json:"max_marks"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	Feedback       string  `json:"feedback"`
}
