package grading

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/autograder/internal/model"
	"github.com/pavelanni/autograder/internal/store"
)

// SubmissionGrader grades a single stored submission. *Service implements it.
type SubmissionGrader interface {
	GradeSubmission(ctx context.Context, submissionID int64) (*Result, error)
}

// BatchReport summarizes one batch run.
type BatchReport struct {
	RunID       string    `json:"run_id"`
	Assignments int       `json:"assignments"`
	Graded      int       `json:"graded"`
	Failed      int       `json:"failed"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Batch grades ungraded submissions across assignments.
type Batch struct {
	store   *store.Store
	grader  SubmissionGrader
	workers int
	logger  *slog.Logger
}

// NewBatch creates a batch runner grading up to workers submissions at once.
func NewBatch(st *store.Store, g SubmissionGrader, workers int, logger *slog.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{store: st, grader: g, workers: workers, logger: logger}
}

// RunDue grades every ungraded submission of assignments whose deadline is
// at or before now, then records the run time.
func (b *Batch) RunDue(ctx context.Context, now time.Time) (BatchReport, error) {
	report := BatchReport{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := b.logger.With("run_id", report.RunID)

	due, err := b.store.ListDueAssignments(ctx, now)
	if err != nil {
		return report, err
	}
	var subs []model.Submission
	for _, a := range due {
		pending, err := b.store.ListUngradedSubmissions(ctx, a.ID)
		if err != nil {
			return report, err
		}
		subs = append(subs, pending...)
	}
	report.Assignments = len(due)
	log.Info("grading due submissions", "assignments", len(due), "submissions", len(subs), "workers", b.workers)

	b.grade(ctx, log, subs, &report)

	if err := b.store.SetLastGradingRun(ctx, now); err != nil {
		log.Warn("recording grading run failed", "error", err)
	}
	report.FinishedAt = time.Now().UTC()
	log.Info("grading run finished", "graded", report.Graded, "failed", report.Failed)
	return report, nil
}

// RunAssignment grades one assignment's ungraded submissions regardless of
// its deadline.
func (b *Batch) RunAssignment(ctx context.Context, assignmentID int64) (BatchReport, error) {
	report := BatchReport{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := b.logger.With("run_id", report.RunID, "assignment_id", assignmentID)

	if _, err := b.store.GetAssignment(ctx, assignmentID); err != nil {
		return report, err
	}
	subs, err := b.store.ListUngradedSubmissions(ctx, assignmentID)
	if err != nil {
		return report, err
	}
	report.Assignments = 1
	log.Info("grading assignment", "submissions", len(subs), "workers", b.workers)

	b.grade(ctx, log, subs, &report)

	report.FinishedAt = time.Now().UTC()
	log.Info("assignment grading finished", "graded", report.Graded, "failed", report.Failed)
	return report, nil
}

func (b *Batch) grade(ctx context.Context, log *slog.Logger, subs []model.Submission, report *BatchReport) {
	if len(subs) == 0 {
		return
	}
	pool := NewPool[error](b.workers, len(subs))
	for _, sub := range subs {
		id := sub.ID
		pool.Submit(strconv.FormatInt(id, 10), func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := b.grader.GradeSubmission(ctx, id)
			return err
		})
	}
	pool.Close()

	for r := range pool.Results() {
		if r.Output != nil {
			report.Failed++
			log.Error("grading submission failed", "submission_id", r.JobID, "error", r.Output)
			continue
		}
		report.Graded++
	}
}
