package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/autograder/internal/export"
	"github.com/pavelanni/autograder/internal/grading"
	appI18n "github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/model"
	"github.com/pavelanni/autograder/internal/store"
)

// Config holds HTTP-layer settings.
type Config struct {
	BasePath    string
	Lang        string
	UploadDir   string
	CORSOrigins []string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	grading  *grading.Service
	batch    *grading.Batch
	config   Config
	validate *validator.Validate
}

// New creates a new Handler.
func New(s *store.Store, g *grading.Service, b *grading.Batch, cfg Config) *Handler {
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	return &Handler{store: s, grading: g, batch: b, config: cfg, validate: validator.New()}
}

// Router builds the full HTTP handler with middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(h.config.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
			ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if h.config.BasePath != "" {
		r.Route(h.config.BasePath, h.Routes)
		return r
	}
	h.Routes(r)
	return r
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(appI18n.Middleware(h.config.Lang))

		r.Get("/assignments", h.handleListAssignments)
		r.Get("/assignments/{id}/total-marks", h.handleTotalMarks)
		r.Post("/assignments/{id}/submissions", h.handleSubmit)
		r.Get("/submissions/{id}/feedback", h.handleFeedback)
		r.Get("/submissions/{id}/report", h.handleReport)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleTeacher, model.UserRoleAdmin))
			r.Post("/assignments", h.handleCreateAssignment)
			r.Post("/assignments/{id}/grade", h.handleGradeAssignment)
			r.Get("/assignments/{id}/export", h.handleExport)
			r.Post("/grade/due", h.handleGradeDue)
			r.Post("/submissions/{id}/grade", h.handleGradeSubmission)
			r.Put("/submissions/{id}/feedback/{question}", h.handleUpdateFeedback)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleAdmin))
			r.Get("/admin/users", h.handleListUsers)
			r.Post("/admin/users", h.handleCreateUser)
		})
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps storage errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrMarksOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		var extractErr *grading.ExtractionError
		if errors.As(err, &extractErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	last, err := h.store.LastGradingRun(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	resp := map[string]any{"status": "ok"}
	if !last.IsZero() {
		resp["last_grading_run"] = last.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListAssignments(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleTotalMarks(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assignment_id": id,
		"total_marks":   h.grading.AssignmentTotalMarks(r.Context(), id),
	})
}

func (h *Handler) handleGradeAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}
	report, err := h.batch.RunAssignment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGradeDue(w http.ResponseWriter, r *http.Request) {
	report, err := h.batch.RunDue(r.Context(), time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGradeSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid submission ID")
		return
	}
	res, err := h.grading.GradeSubmission(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// canView reports whether u may see a submission. Students only see their own.
func canView(u *model.User, sub model.Submission) bool {
	return u.Role != model.UserRoleStudent || sub.StudentID == u.ID
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid submission ID")
		return
	}
	view, err := h.store.GetSubmissionView(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !canView(model.UserFromContext(r.Context()), view.Submission) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if view.Rows == nil {
		view.Rows = []model.QuestionFeedback{}
	}
	writeJSON(w, http.StatusOK, view)
}

type updateFeedbackRequest struct {
	ObtainedMarks *float64 `json:"obtained_marks" validate:"required,gte=0"`
	Feedback      string   `json:"feedback" validate:"max=10000"`
}

func (h *Handler) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid submission ID")
		return
	}
	question := chi.URLParam(r, "question")

	var req updateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.grading.UpdateFeedback(r.Context(), id, question, *req.ObtainedMarks, req.Feedback)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission_id": id, "grade": total})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}
	exp, err := h.store.ExportAssignment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, exp); err != nil {
			slog.Error("export json", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=assignment-"+strconv.FormatInt(id, 10)+".xlsx")
		if err := export.WriteXLSX(w, exp); err != nil {
			slog.Error("export xlsx", "error", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json or xlsx")
	}
}
