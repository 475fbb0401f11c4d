package grading

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/pavelanni/autograder/internal/cache"
	"github.com/pavelanni/autograder/internal/events"
	"github.com/pavelanni/autograder/internal/extract"
	"github.com/pavelanni/autograder/internal/model"
	"github.com/pavelanni/autograder/internal/questionbank"
	"github.com/pavelanni/autograder/internal/store"
)

// ExtractionError means a sheet's text could not be read. The submission
// is left ungraded.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Result describes a committed grading.
type Result struct {
	SubmissionID int64     `json:"submission_id"`
	AssignmentID int64     `json:"assignment_id"`
	Rows         []Row     `json:"rows"`
	Total        float64   `json:"total"`
	MaxMarks     float64   `json:"max_marks"`
	GradedAt     time.Time `json:"graded_at"`
}

// ServiceConfig wires a Service. Cache and Publisher are optional.
type ServiceConfig struct {
	Store        *store.Store
	Extractor    extract.Extractor
	Orchestrator *Orchestrator
	Cache        cache.BankCache
	Publisher    events.Publisher
	Logger       *slog.Logger
	// FileRoot resolves relative sheet paths.
	FileRoot string
}

// Service grades stored submissions end to end.
type Service struct {
	store        *store.Store
	extractor    extract.Extractor
	orchestrator *Orchestrator
	cache        cache.BankCache
	publisher    events.Publisher
	logger       *slog.Logger
	fileRoot     string
	locks        *keyedMutex
	now          func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:        cfg.Store,
		extractor:    cfg.Extractor,
		orchestrator: cfg.Orchestrator,
		cache:        cfg.Cache,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
		fileRoot:     cfg.FileRoot,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) resolve(path string) string {
	if s.fileRoot == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.fileRoot, path)
}

func (s *Service) loadBank(ctx context.Context, path string) (*questionbank.Bank, error) {
	full := s.resolve(path)
	text, err := s.extractor.ExtractText(ctx, full)
	if err != nil {
		return nil, &ExtractionError{Path: full, Err: err}
	}
	return cache.ParseCached(ctx, s.cache, text), nil
}

// GradeSubmission grades one submission and commits all of its rows in a
// single transaction. Regrading overwrites earlier rows.
func (s *Service) GradeSubmission(ctx context.Context, submissionID int64) (*Result, error) {
	unlock := s.locks.Lock(submissionID)
	defer unlock()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("submission_id", sub.ID, "assignment_id", a.ID)

	teacher, err := s.loadBank(ctx, a.SolutionFile)
	if err != nil {
		log.Error("extracting solution failed", "error", err)
		return nil, err
	}
	student, err := s.loadBank(ctx, sub.SubmittedFile)
	if err != nil {
		log.Error("extracting submission failed", "error", err)
		return nil, err
	}

	start := s.now()
	outcome := s.orchestrator.GradeSubmission(ctx, teacher, student)

	rows := make([]model.QuestionFeedback, 0, len(outcome.Rows))
	parts := make([]string, 0, len(outcome.Rows))
	for _, r := range outcome.Rows {
		rows = append(rows, model.QuestionFeedback{
			SubmissionID:   sub.ID,
			QuestionNumber: r.QuestionNumber,
			MaxMarks:       r.MaxMarks,
			ObtainedMarks:  r.ObtainedMarks,
			Feedback:       r.Feedback,
		})
		parts = append(parts, r.QuestionNumber+": "+r.Feedback)
	}

	gradedAt := s.now().UTC()
	total, err := s.store.SaveGrading(ctx, sub.ID, rows, strings.Join(parts, "\n\n"), gradedAt)
	if err != nil {
		log.Error("saving grading failed", "error", err)
		return nil, fmt.Errorf("save grading: %w", err)
	}

	if a.TotalMarks <= 0 {
		if ceiling := TotalMarks(teacher); ceiling > 0 {
			if err := s.store.SetTotalMarks(ctx, a.ID, float64(ceiling)); err != nil {
				log.Warn("storing total marks failed", "error", err)
			}
		}
	}

	res := &Result{
		SubmissionID: sub.ID,
		AssignmentID: a.ID,
		Rows:         outcome.Rows,
		Total:        total,
		MaxMarks:     outcome.MaxMarks(),
		GradedAt:     gradedAt,
	}
	log.Info("submission graded",
		"total", total, "max_marks", res.MaxMarks, "questions", len(rows),
		"elapsed", gradedAt.Sub(start).Round(time.Millisecond))

	if err := s.publisher.PublishSubmissionGraded(ctx, events.SubmissionGraded{
		SubmissionID: res.SubmissionID,
		AssignmentID: res.AssignmentID,
		Total:        res.Total,
		MaxMarks:     res.MaxMarks,
		GradedAt:     res.GradedAt,
	}); err != nil {
		log.Warn("publishing graded event failed", "error", err)
	}
	return res, nil
}

// AssignmentTotalMarks returns the assignment's ceiling, computing and
// storing it from the solution sheet the first time. Any failure yields 0,
// which callers must read as unknown.
func (s *Service) AssignmentTotalMarks(ctx context.Context, assignmentID int64) float64 {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		s.logger.Error("total marks: load assignment", "assignment_id", assignmentID, "error", err)
		return 0
	}
	if a.TotalMarks > 0 {
		return a.TotalMarks
	}
	bank, err := s.loadBank(ctx, a.SolutionFile)
	if err != nil {
		s.logger.Error("total marks: extract solution", "assignment_id", assignmentID, "error", err)
		return 0
	}
	total := float64(TotalMarks(bank))
	if total > 0 {
		if err := s.store.SetTotalMarks(ctx, assignmentID, total); err != nil {
			s.logger.Warn("total marks: store", "assignment_id", assignmentID, "error", err)
		}
	}
	return total
}

// UpdateFeedback applies a teacher's edit to one question and returns the
// recomputed grade.
func (s *Service) UpdateFeedback(ctx context.Context, submissionID int64, questionNumber string, obtained float64, feedback string) (float64, error) {
	unlock := s.locks.Lock(submissionID)
	defer unlock()

	total, err := s.store.UpdateFeedback(ctx, submissionID, questionNumber, obtained, feedback)
	if err != nil {
		return 0, err
	}
	s.logger.Info("feedback edited", "submission_id", submissionID, "question", questionNumber,
		"obtained", obtained, "grade", total)
	return total, nil
}
