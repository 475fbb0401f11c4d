// Package views renders HTML pages for the grading API.
package views

import (
	"context"
	"strconv"
	"time"

	appI18n "github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/model"
)

func marks(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// reportCeiling prefers the assignment's stored total over the row sum.
func reportCeiling(view model.SubmissionView) float64 {
	if view.Assignment.TotalMarks > 0 {
		return view.Assignment.TotalMarks
	}
	var ceiling float64
	for _, r := range view.Rows {
		ceiling += r.MaxMarks
	}
	return ceiling
}

func totalScore(ctx context.Context, view model.SubmissionView) string {
	return appI18n.Td(ctx, "TotalScore", map[string]any{
		"Obtained": marks(view.Submission.Grade),
		"Max":      marks(reportCeiling(view)),
	})
}
