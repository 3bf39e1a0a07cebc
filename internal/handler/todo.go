package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/todo/internal/handler/dto"
	"github.com/penshort/todo/internal/model"
	"github.com/penshort/todo/internal/service"
	"github.com/penshort/todo/internal/validator"
)

// TodoHandler handles HTTP requests for entry operations.
type TodoHandler struct {
	svc       *service.TodoService
	validator *validator.Validator
	logger    *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, v *validator.Validator, logger *slog.Logger) *TodoHandler {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoHandler{
		svc:       svc,
		validator: v,
		logger:    logger,
	}
}

// Routes returns the entry routes, to be mounted at /api/v1/todos.
func (h *TodoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /api/v1/todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListEntries(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(entries))
}

// Get handles GET /api/v1/todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	entry, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Create handles POST /api/v1/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TodoEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	draft, err := h.validator.ValidateDraft(req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	entry, err := h.svc.CreateEntry(r.Context(), draft)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("entry_created", "entry_id", entry.ID)

	writeJSON(w, http.StatusCreated, entry)
}

// Update handles PATCH /api/v1/todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	// The id is checked before the body so a bad id wins over a bad body.
	idString := chi.URLParam(r, "id")
	if _, err := h.validator.ValidateID(idString); err != nil {
		h.handleServiceError(w, err)
		return
	}

	var req dto.TodoEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	changes, err := h.validator.Validate(idString, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), changes)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("entry_updated",
		"entry_id", entry.ID,
		"completed", entry.Completed,
	)

	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/v1/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("entry_deleted", "entry_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps validation and service errors to HTTP responses.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidIdentifierFormat):
		h.writeError(w, http.StatusBadRequest, "INVALID_ID", errorMessage(err, "ID must be a number"))
	case errors.Is(err, model.ErrFieldTooLong):
		h.writeError(w, http.StatusBadRequest, "FIELD_TOO_LONG", errorMessage(err, "Field too long"))
	case errors.Is(err, model.ErrInvalidTimestampFormat):
		h.writeError(w, http.StatusBadRequest, "INVALID_TIMESTAMP", errorMessage(err, "Invalid timestamp format"))
	case errors.Is(err, model.ErrInvalidDueDate):
		h.writeError(w, http.StatusBadRequest, "INVALID_DUE_DATE", errorMessage(err, "Invalid due date"))
	case errors.Is(err, service.ErrEntryNotFound):
		h.writeError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "Entry not found")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *TodoHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// errorMessage renders a client-facing message from a validation error.
func errorMessage(err error, fallback string) string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Reason == "" {
		return fallback
	}
	if verr.Field == "" || verr.Field == "id" || verr.Kind == model.ErrInvalidDueDate {
		return verr.Reason
	}
	return verr.Field + ": " + verr.Reason
}
