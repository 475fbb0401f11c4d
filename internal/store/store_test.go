package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestAssignment(t *testing.T, s *Store, title string, deadline time.Time) int64 {
	t.Helper()
	id, err := s.CreateAssignment(context.Background(), model.Assignment{
		Title:        title,
		TeacherID:    1,
		QuestionFile: title + "_questions.pdf",
		SolutionFile: title + "_solution.pdf",
		Deadline:     deadline,
	})
	if err != nil {
		t.Fatalf("insertTestAssignment: %v", err)
	}
	return id
}

func insertTestSubmission(t *testing.T, s *Store, assignmentID, studentID int64) int64 {
	t.Helper()
	id, err := s.CreateSubmission(context.Background(), model.Submission{
		AssignmentID:  assignmentID,
		StudentID:     studentID,
		SubmittedFile: "answers.pdf",
	})
	if err != nil {
		t.Fatalf("insertTestSubmission: %v", err)
	}
	return id
}

func TestQ(t *testing.T) {
	s := &Store{driver: DriverPostgres}
	got := s.q(`UPDATE x SET a = ?, b = ? WHERE id = ?`)
	want := `UPDATE x SET a = $1, b = $2 WHERE id = $3`
	if got != want {
		t.Errorf("q() = %q, want %q", got, want)
	}
	s.driver = DriverSQLite
	if got := s.q(`a = ?`); got != `a = ?` {
		t.Errorf("sqlite query should be unchanged, got %q", got)
	}
}

func TestNewUnsupportedDriver(t *testing.T) {
	if _, err := New(context.Background(), "oracle", ""); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id, err := s.CreateUser(ctx, model.User{
		Username: "alice", DisplayName: "Alice", PasswordHash: "hash", Role: model.UserRoleTeacher, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleTeacher || !u.Active {
		t.Errorf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByID(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("expected nil user without error, got %v, %v", missing, err)
	}

	if _, err := s.CreateUser(ctx, model.User{Username: "alice", PasswordHash: "x", Role: model.UserRoleStudent}); err == nil {
		t.Error("expected duplicate username to fail")
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := insertTestAssignment(t, s, "Midterm", deadline)

	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if a.Title != "Midterm" || a.SolutionFile != "Midterm_solution.pdf" {
		t.Errorf("unexpected assignment: %+v", a)
	}
	if !a.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", a.Deadline, deadline)
	}
	if a.TotalMarks != 0 {
		t.Errorf("expected zero total marks, got %v", a.TotalMarks)
	}

	if err := s.SetTotalMarks(ctx, id, 12); err != nil {
		t.Fatalf("SetTotalMarks: %v", err)
	}
	a, _ = s.GetAssignment(ctx, id)
	if a.TotalMarks != 12 {
		t.Errorf("total marks = %v, want 12", a.TotalMarks)
	}

	if err := s.SetTotalMarks(ctx, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetAssignment(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListDueAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	past := insertTestAssignment(t, s, "past", now.Add(-time.Hour))
	future := insertTestAssignment(t, s, "future", now.Add(time.Hour))
	pastNoSubs := insertTestAssignment(t, s, "empty", now.Add(-time.Hour))
	_ = pastNoSubs

	insertTestSubmission(t, s, past, 1)
	insertTestSubmission(t, s, future, 1)

	due, err := s.ListDueAssignments(ctx, now)
	if err != nil {
		t.Fatalf("ListDueAssignments: %v", err)
	}
	if len(due) != 1 || due[0].ID != past {
		t.Fatalf("expected only %d to be due, got %+v", past, due)
	}

	// Once graded, the assignment is no longer due.
	subs, _ := s.ListUngradedSubmissions(ctx, past)
	if _, err := s.SaveGrading(ctx, subs[0].ID, nil, "", now); err != nil {
		t.Fatalf("SaveGrading: %v", err)
	}
	due, _ = s.ListDueAssignments(ctx, now)
	if len(due) != 0 {
		t.Errorf("expected nothing due, got %+v", due)
	}
}

func TestSubmissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aID := insertTestAssignment(t, s, "HW1", time.Now())
	s1 := insertTestSubmission(t, s, aID, 1)
	s2 := insertTestSubmission(t, s, aID, 2)

	sub, err := s.GetSubmission(ctx, s1)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if sub.Graded || sub.GradedAt != nil || sub.Grade != 0 {
		t.Errorf("new submission should be ungraded: %+v", sub)
	}
	if sub.SubmittedAt.IsZero() {
		t.Error("submitted_at should be set")
	}

	all, err := s.ListSubmissions(ctx, aID)
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(all) != 2 || all[0].ID != s1 || all[1].ID != s2 {
		t.Errorf("unexpected submissions: %+v", all)
	}

	if _, err := s.GetSubmission(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveGradingIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	aID := insertTestAssignment(t, s, "HW", time.Now())
	subID := insertTestSubmission(t, s, aID, 1)

	first := []model.QuestionFeedback{
		{QuestionNumber: "Q1", MaxMarks: 3, ObtainedMarks: 1, Feedback: "(i) a | (ii) b"},
		{QuestionNumber: "Q2", MaxMarks: 5, ObtainedMarks: 4.5, Feedback: "good"},
	}
	gradedAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	total, err := s.SaveGrading(ctx, subID, first, "summary one", gradedAt)
	if err != nil {
		t.Fatalf("SaveGrading: %v", err)
	}
	if total != 5.5 {
		t.Errorf("total = %v, want 5.5", total)
	}

	sub, _ := s.GetSubmission(ctx, subID)
	if !sub.Graded || sub.GradedAt == nil || sub.Grade != 5.5 || sub.Feedback != "summary one" {
		t.Errorf("unexpected submission after grading: %+v", sub)
	}

	second := []model.QuestionFeedback{
		{QuestionNumber: "Q1", MaxMarks: 3, ObtainedMarks: 2, Feedback: "better"},
		{QuestionNumber: "Q2", MaxMarks: 5, ObtainedMarks: 5, Feedback: "perfect"},
	}
	total, err = s.SaveGrading(ctx, subID, second, "summary two", gradedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("SaveGrading again: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %v, want 7", total)
	}

	rows, err := s.ListFeedback(ctx, subID)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after regrade, got %d", len(rows))
	}
	if rows[0].QuestionNumber != "Q1" || rows[0].ObtainedMarks != 2 || rows[0].Feedback != "better" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].QuestionNumber != "Q2" || rows[1].ObtainedMarks != 5 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestSaveGradingUnknownSubmissionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []model.QuestionFeedback{{QuestionNumber: "Q1", MaxMarks: 1, ObtainedMarks: 1}}
	// Foreign keys reject the row for a submission that does not exist.
	if _, err := s.SaveGrading(ctx, 42, rows, "", time.Now()); err == nil {
		t.Fatal("expected error for unknown submission")
	}
	got, err := s.ListFeedback(ctx, 42)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows written, got %d", len(got))
	}
}

func TestUpdateFeedback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	aID := insertTestAssignment(t, s, "HW", time.Now())
	subID := insertTestSubmission(t, s, aID, 1)

	_, err := s.SaveGrading(ctx, subID, []model.QuestionFeedback{
		{QuestionNumber: "Q1", MaxMarks: 3, ObtainedMarks: 1, Feedback: "meh"},
		{QuestionNumber: "Q2", MaxMarks: 2, ObtainedMarks: 2, Feedback: "ok"},
	}, "", time.Now())
	if err != nil {
		t.Fatalf("SaveGrading: %v", err)
	}

	total, err := s.UpdateFeedback(ctx, subID, "Q1", 2.5, "teacher override")
	if err != nil {
		t.Fatalf("UpdateFeedback: %v", err)
	}
	if total != 4.5 {
		t.Errorf("total = %v, want 4.5", total)
	}

	if _, err := s.UpdateFeedback(ctx, subID, "Q1", 4, ""); !errors.Is(err, ErrMarksOutOfRange) {
		t.Errorf("expected ErrMarksOutOfRange, got %v", err)
	}
	if _, err := s.UpdateFeedback(ctx, subID, "Q1", -1, ""); !errors.Is(err, ErrMarksOutOfRange) {
		t.Errorf("expected ErrMarksOutOfRange, got %v", err)
	}
	if _, err := s.UpdateFeedback(ctx, subID, "Q9", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	sub, _ := s.GetSubmission(ctx, subID)
	if sub.Grade != 4.5 {
		t.Errorf("grade = %v, want 4.5", sub.Grade)
	}
}

func TestRecomputeGrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	aID := insertTestAssignment(t, s, "HW", time.Now())
	subID := insertTestSubmission(t, s, aID, 1)

	total, err := s.RecomputeGrade(ctx, subID)
	if err != nil {
		t.Fatalf("RecomputeGrade: %v", err)
	}
	if total != 0 {
		t.Errorf("empty submission total = %v, want 0", total)
	}
}

func TestRecomputeAssignmentGradesPicksUpDirectEdits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	aID := insertTestAssignment(t, s, "HW", time.Now())
	graded := insertTestSubmission(t, s, aID, 1)
	ungraded := insertTestSubmission(t, s, aID, 2)

	rows := []model.QuestionFeedback{
		{QuestionNumber: "Q1", MaxMarks: 3, ObtainedMarks: 2, Feedback: "ok"},
		{QuestionNumber: "Q2", MaxMarks: 2, ObtainedMarks: 1, Feedback: "partial"},
	}
	if _, err := s.SaveGrading(ctx, graded, rows, "summary", time.Now()); err != nil {
		t.Fatalf("SaveGrading: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, s.q(
		`UPDATE question_feedback SET obtained_marks = ? WHERE submission_id = ? AND question_number = ?`),
		2, graded, "Q2"); err != nil {
		t.Fatalf("direct edit: %v", err)
	}

	n, err := s.RecomputeAssignmentGrades(ctx, aID)
	if err != nil {
		t.Fatalf("RecomputeAssignmentGrades: %v", err)
	}
	if n != 1 {
		t.Errorf("recomputed %d submissions, want 1", n)
	}
	sub, _ := s.GetSubmission(ctx, graded)
	if sub.Grade != 4 {
		t.Errorf("grade = %v, want 4", sub.Grade)
	}
	other, _ := s.GetSubmission(ctx, ungraded)
	if other.Graded || other.Grade != 0 {
		t.Errorf("ungraded submission touched: %+v", other)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetMetadata(ctx, "missing")
	if err != nil || v != "" {
		t.Errorf("GetMetadata(missing) = %q, %v", v, err)
	}

	last, err := s.LastGradingRun(ctx)
	if err != nil || !last.IsZero() {
		t.Errorf("LastGradingRun() = %v, %v", last, err)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := s.SetLastGradingRun(ctx, at); err != nil {
		t.Fatalf("SetLastGradingRun: %v", err)
	}
	if err := s.SetLastGradingRun(ctx, at.Add(time.Minute)); err != nil {
		t.Fatalf("SetLastGradingRun update: %v", err)
	}
	last, err = s.LastGradingRun(ctx)
	if err != nil {
		t.Fatalf("LastGradingRun: %v", err)
	}
	if !last.Equal(at.Add(time.Minute)) {
		t.Errorf("LastGradingRun() = %v", last)
	}
}

func TestExportAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	uid, _ := s.CreateUser(ctx, model.User{Username: "bob", DisplayName: "Bob", PasswordHash: "x", Role: model.UserRoleStudent, Active: true})
	aID := insertTestAssignment(t, s, "Final", time.Now())
	subID := insertTestSubmission(t, s, aID, uid)
	insertTestSubmission(t, s, aID, 999)

	if _, err := s.SaveGrading(ctx, subID, []model.QuestionFeedback{
		{QuestionNumber: "Q1", MaxMarks: 2, ObtainedMarks: 1, Feedback: "half"},
	}, "Q1: half", time.Now()); err != nil {
		t.Fatalf("SaveGrading: %v", err)
	}

	exp, err := s.ExportAssignment(ctx, aID)
	if err != nil {
		t.Fatalf("ExportAssignment: %v", err)
	}
	if exp.Title != "Final" || len(exp.Results) != 2 {
		t.Fatalf("unexpected export: %+v", exp)
	}
	r := exp.Results[0]
	if r.Username != "bob" || !r.Graded || r.Grade != 1 || len(r.Questions) != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
	if exp.Results[1].Username != "" || exp.Results[1].Graded {
		t.Errorf("unknown student should export with empty name: %+v", exp.Results[1])
	}
}
