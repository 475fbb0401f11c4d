package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pavelanni/autograder/internal/model"
)

const maxUploadSize = 20 << 20

var allowedExts = map[string]bool{".pdf": true, ".txt": true, ".md": true}

// saveUpload stores a multipart file under the upload dir, named by content
// hash, and returns the stored file name.
func (h *Handler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("no %s uploaded", field)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", fmt.Errorf("%s: unsupported file type %q", field, ext)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:16]) + ext

	if err := os.MkdirAll(h.config.UploadDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(h.config.UploadDir, name), data, 0o644); err != nil {
		return "", err
	}
	slog.Info("stored upload", "field", field, "filename", header.Filename, "stored_as", name, "bytes", len(data))
	return name, nil
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	deadline, err := time.Parse(time.RFC3339, r.FormValue("deadline"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "deadline must be RFC3339")
		return
	}

	solution, err := h.saveUpload(r, "solution_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var questions string
	if len(r.MultipartForm.File["question_file"]) > 0 {
		if questions, err = h.saveUpload(r, "question_file"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	a := model.Assignment{
		Title:        title,
		TeacherID:    model.UserFromContext(r.Context()).ID,
		QuestionFile: questions,
		SolutionFile: solution,
		Deadline:     deadline,
	}
	a.ID, err = h.store.CreateAssignment(r.Context(), a)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Location", h.path(fmt.Sprintf("/assignments/%d", a.ID)))
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}
	if _, err := h.store.GetAssignment(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large")
		return
	}
	name, err := h.saveUpload(r, "answer_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := model.Submission{
		AssignmentID:  id,
		StudentID:     model.UserFromContext(r.Context()).ID,
		SubmittedFile: name,
		SubmittedAt:   time.Now().UTC(),
	}
	sub.ID, err = h.store.CreateSubmission(r.Context(), sub)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Location", h.path(fmt.Sprintf("/submissions/%d/feedback", sub.ID)))
	writeJSON(w, http.StatusCreated, sub)
}
