package event

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/process"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	ProcessExists(ctx context.Context, processID int64) (bool, error)
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ByProcess(ctx context.Context, processID int64) ([]*Event, error)
	ByProcessDateOrdered(ctx context.Context, processID int64, descending bool) ([]*Event, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]*Event, error)
	ParentProcess(ctx context.Context, eventID int64) (*process.Process, error)
	Update(ctx context.Context, e *Event) (*Event, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves timeline event routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
}

// NewHandler creates an event Handler
func NewHandler(repo Repository, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		logger: logger.With().Str("module", "event").Logger(),
		gate:   gate,
	}
}

// Routes returns the event routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/events", h.list)
	r.Get("/event/{id}", h.get)
	r.Get("/events/searchByProcess/{processId}", h.byProcess)
	r.Get("/events/searchByDateRange", h.byDateRange)
	r.Get("/events/getByProcessOrdered", h.byProcessOrdered(false))
	r.Get("/events/getByProcessOrderedDesc", h.byProcessOrdered(true))
	r.Get("/events/getProcess", h.parentProcess)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/event", h.create)
		r.Put("/event/update/{id}", h.update)
		r.Delete("/events/delete/{id}", h.delete)
	})

	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) byProcess(w http.ResponseWriter, r *http.Request) {
	processID, err := web.IDParam(r, "processId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	events, err := h.repo.ByProcess(r.Context(), processID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) byDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawStart, rawEnd := q.Get("start_date"), q.Get("end_date")
	if rawStart == "" || rawEnd == "" {
		web.WriteError(w, h.logger, apperrors.BadRequest("start_date and end_date are required"))
		return
	}

	start, errStart := parseDate(rawStart)
	end, errEnd := parseDate(rawEnd)
	if errStart != nil || errEnd != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("invalid date format, use YYYY-MM-DD or ISO 8601"))
		return
	}

	events, err := h.repo.ByDateRange(r.Context(), start, end)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) byProcessOrdered(descending bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		processID, err := queryID(r, "process_id")
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}
		events, err := h.repo.ByProcessDateOrdered(r.Context(), processID, descending)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, events)
	}
}

func (h *Handler) parentProcess(w http.ResponseWriter, r *http.Request) {
	eventID, err := queryID(r, "event_id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	p, err := h.repo.ParentProcess(r.Context(), eventID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

type eventRequest struct {
	ProcessID   int64      `json:"processId"`
	OrderIndex  int        `json:"orderIndex"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DateStart   time.Time  `json:"dateStart"`
	DateEnd     *time.Time `json:"dateEnd"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	exists, err := h.repo.ProcessExists(r.Context(), req.ProcessID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if !exists {
		web.WriteError(w, h.logger, apperrors.BadRequest("referenced process does not exist"))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyEvent)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	e := &Event{
		ID:          id,
		ProcessID:   req.ProcessID,
		OrderIndex:  req.OrderIndex,
		Name:        req.Name,
		Description: req.Description,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
	}
	if err := h.repo.Create(r.Context(), e); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req eventRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	e := &Event{
		ID:          id,
		OrderIndex:  req.OrderIndex,
		Name:        req.Name,
		Description: req.Description,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
	}
	updated, err := h.repo.Update(r.Context(), e)
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperrors.BadRequest(name + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.BadRequest("invalid " + name)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
