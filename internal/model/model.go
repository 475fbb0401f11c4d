package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent submits answer sheets.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher owns assignments and reviews grades.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin is the administration role.
	UserRoleAdmin UserRole = "administration"
)

// IsValidRole reports whether r is one of the known roles.
func IsValidRole(r UserRole) bool {
	switch r {
	case UserRoleStudent, UserRoleTeacher, UserRoleAdmin:
		return true
	}
	return false
}

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Assignment is a teacher's question paper together with its solution sheet.
type Assignment struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	TeacherID    int64     `json:"teacher_id"`
	QuestionFile string    `json:"question_file"`
	SolutionFile string    `json:"solution_file"`
	Deadline     time.Time `json:"deadline"`
	// TotalMarks is 0 until first computed from the solution sheet.
	TotalMarks float64   `json:"total_marks"`
	CreatedAt  time.Time `json:"created_at"`
}

// Submission is one student's answer sheet for an assignment.
type Submission struct {
	ID            int64      `json:"id"`
	AssignmentID  int64      `json:"assignment_id"`
	StudentID     int64      `json:"student_id"`
	SubmittedFile string     `json:"submitted_file"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	Grade         float64    `json:"grade"`
	Feedback      string     `json:"feedback"`
	Graded        bool       `json:"graded"`
	GradedAt      *time.Time `json:"graded_at,omitempty"`
}

// QuestionFeedback is the persisted result for one question of a submission.
// (SubmissionID, QuestionNumber) is unique.
type QuestionFeedback struct {
	ID             int64   `json:"id"`
	SubmissionID   int64   `json:"submission_id"`
	QuestionNumber string  `json:"question_number"`
	MaxMarks       float64 `json:"max_marks"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	Feedback       string  `json:"feedback"`
}

// GradingConfig holds runtime grading parameters set via CLI flags.
type GradingConfig struct {
	Workers       int           // concurrent submissions in a batch
	PromptVariant string        // strict, standard, lenient
	ScoreTimeout  time.Duration // per subjective scoring call, 0 = none
	GradeInterval time.Duration // periodic due-grading in serve, 0 = off
}

// SubmissionView combines a submission with its per-question rows for display.
type SubmissionView struct {
	Submission Submission         `json:"submission"`
	Assignment Assignment         `json:"assignment"`
	Rows       []QuestionFeedback `json:"rows"`
}
