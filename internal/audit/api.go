package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/shared/auth"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, l *AuditoryLog) error
	GetByID(ctx context.Context, id int64) (*AuditoryLog, error)
	List(ctx context.Context) ([]*AuditoryLog, error)
	ByAccount(ctx context.Context, accountID int64) ([]*AuditoryLog, error)
	ByProcess(ctx context.Context, processID int64) ([]*AuditoryLog, error)
	UpdateAction(ctx context.Context, id int64, action string) (*AuditoryLog, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves auditory log routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
	now    func() time.Time
}

// NewHandler creates an audit Handler
func NewHandler(repo Repository, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		logger: logger.With().Str("module", "audit").Logger(),
		gate:   gate,
		now:    time.Now,
	}
}

// Routes returns the audit routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/auditoryLogs", h.list)
	r.Get("/auditoryLog/{id}", h.get)
	r.Get("/auditoryLogs/user/{id}", h.byAccount)
	r.Get("/auditoryLogs/process/{id}", h.byProcess)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/auditoryLog", h.create)
		r.Put("/auditoryLog/{id}", h.update)
		r.With(auth.RequireRoles(auth.RoleAdmin)).Delete("/auditoryLog/{id}", h.delete)
	})

	return r
}

type logRequest struct {
	LogAction string `json:"logAction"`
	AccountID int64  `json:"accountId"`
	ProcessID int64  `json:"processId"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	l, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) byAccount(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByAccount(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) byProcess(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByProcess(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if req.LogAction == "" {
		web.WriteError(w, h.logger, apperrors.BadRequest("logAction is required"))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyAuditoryLog)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	// logTime is always server-set, never taken from the request
	l := &AuditoryLog{
		ID:        id,
		LogAction: req.LogAction,
		LogTime:   h.now().UTC(),
		AccountID: req.AccountID,
		ProcessID: req.ProcessID,
	}
	if err := h.repo.Create(r.Context(), l); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req logRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	updated, err := h.repo.UpdateAction(r.Context(), id, req.LogAction)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "auditory log deleted"})
}
