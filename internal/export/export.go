// Package export writes an assignment's grades as JSON or an Excel workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/autograder/internal/model"
)

const (
	sheetQuestions = "Questions"
	sheetTotals    = "Totals"
)

// WriteJSON writes the export as indented JSON.
func WriteJSON(w io.Writer, exp *model.GradeExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}

// WriteXLSX writes a workbook with one row per (submission, question) on the
// Questions sheet and one row per submission on the Totals sheet.
func WriteXLSX(w io.Writer, exp *model.GradeExport) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetQuestions)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetTotals); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := writeRow(f, sheetQuestions, 1, []any{
		"Submission", "Username", "Name", "Question", "Max Marks", "Obtained Marks", "Feedback",
	}); err != nil {
		return err
	}
	if err := writeRow(f, sheetTotals, 1, []any{
		"Submission", "Username", "Name", "Submitted At", "Graded", "Graded At", "Grade", "Total Marks",
	}); err != nil {
		return err
	}

	qRow := 2
	for i, r := range exp.Results {
		for _, q := range r.Questions {
			if err := writeRow(f, sheetQuestions, qRow, []any{
				r.SubmissionID, r.Username, r.DisplayName, q.QuestionNumber, q.MaxMarks, q.ObtainedMarks, q.Feedback,
			}); err != nil {
				return err
			}
			qRow++
		}

		gradedAt := ""
		if r.GradedAt != nil {
			gradedAt = r.GradedAt.UTC().Format(time.RFC3339)
		}
		if err := writeRow(f, sheetTotals, i+2, []any{
			r.SubmissionID, r.Username, r.DisplayName, r.SubmittedAt.UTC().Format(time.RFC3339),
			r.Graded, gradedAt, r.Grade, exp.TotalMarks,
		}); err != nil {
			return err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
