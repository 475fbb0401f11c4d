package handler

import (
	"log/slog"
	"net/http"

	"github.com/pavelanni/autograder/internal/handler/views"
	"github.com/pavelanni/autograder/internal/model"
)

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid submission ID", http.StatusBadRequest)
		return
	}
	view, err := h.store.GetSubmissionView(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !canView(model.UserFromContext(r.Context()), view.Submission) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ReportPage(*view).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
