package observation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	EventExists(ctx context.Context, eventID int64) (bool, error)
	Create(ctx context.Context, o *Observation) error
	GetByID(ctx context.Context, id int64) (*Observation, error)
	List(ctx context.Context, descending bool) ([]*Observation, error)
	ByEvent(ctx context.Context, eventID int64) ([]*Observation, error)
	Update(ctx context.Context, o *Observation) (*Observation, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves observation routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
}

// NewHandler creates an observation Handler
func NewHandler(repo Repository, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		logger: logger.With().Str("module", "observation").Logger(),
		gate:   gate,
	}
}

// Routes returns the observation routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/observations", h.list(false))
	r.Get("/observations/asc", h.list(false))
	r.Get("/observations/desc", h.list(true))
	r.Get("/observation/{id}", h.get)
	r.Get("/observations/event/{eventId}", h.byEvent)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/observation", h.create)
		r.Put("/observation/{id}", h.update)
		r.Delete("/observation/{id}", h.delete)
	})

	return r
}

type observationRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	EventID int64  `json:"eventId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req observationRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	exists, err := h.repo.EventExists(r.Context(), req.EventID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if !exists {
		web.WriteError(w, h.logger, apperrors.BadRequest("referenced event does not exist"))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyObservation)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	o := &Observation{ID: id, Title: req.Title, Content: req.Content, EventID: req.EventID}
	if err := h.repo.Create(r.Context(), o); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) list(descending bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.repo.List(r.Context(), descending)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, items)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	o, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) byEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := web.IDParam(r, "eventId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByEvent(r.Context(), eventID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req observationRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	o := &Observation{ID: id, Title: req.Title, Content: req.Content}
	updated, err := h.repo.Update(r.Context(), o)
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "observation deleted"})
}
