package advice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, a *LegalAdvice) error
	GetByID(ctx context.Context, id int64) (*LegalAdvice, error)
	List(ctx context.Context) ([]*LegalAdvice, error)
	Update(ctx context.Context, a *LegalAdvice) (*LegalAdvice, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves legal advice routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
}

// NewHandler creates an advice Handler
func NewHandler(repo Repository, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		logger: logger.With().Str("module", "advice").Logger(),
		gate:   gate,
	}
}

// Routes returns the advice routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/adviceList", h.list)
	r.Get("/legalAdvice/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/legalAdvice", h.create)
		r.Put("/legalAdvice/{id}", h.update)
		r.Delete("/legalAdvice/{id}", h.delete)
		r.Get("/legalAdvice/{id}/attachment", h.attachment)
	})

	return r
}

type adviceRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
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
	a, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyAdvice)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	a := &LegalAdvice{ID: id, Topic: req.Topic, Content: req.Content}
	if err := h.repo.Create(r.Context(), a); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req adviceRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	updated, err := h.repo.Update(r.Context(), &LegalAdvice{ID: id, Topic: req.Topic, Content: req.Content})
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "legal advice deleted"})
}

// attachment wraps the selected text in a link back to the advice entry
func (h *Handler) attachment(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	text := r.URL.Query().Get("text")
	if text == "" {
		web.WriteError(w, h.logger, apperrors.BadRequest("text is required"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<a href='/legalsystem/legalAdvice/%d'>%s</a>", id, text)
}
