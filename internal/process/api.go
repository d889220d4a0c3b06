package process

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/metrics"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, p *Process) error
	GetByID(ctx context.Context, id int64) (*Process, error)
	List(ctx context.Context) ([]*Process, error)
	Update(ctx context.Context, p *Process) (*Process, error)
	SearchByTitle(ctx context.Context, title string) ([]*Process, error)
	SearchByProvince(ctx context.Context, province string) ([]*Process, error)
	SearchByStatus(ctx context.Context, status string) ([]*Process, error)
	SearchByType(ctx context.Context, processType string) ([]*Process, error)
	SearchByLastUpdate(ctx context.Context, start, end time.Time) ([]*Process, error)
	SummaryEvents(ctx context.Context, processID int64) ([]SummaryEvent, error)
}

// Handler serves legal process routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
	now    func() time.Time
}

// NewHandler creates a process Handler
func NewHandler(repo Repository, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		logger: logger.With().Str("module", "process").Logger(),
		gate:   gate,
		now:    time.Now,
	}
}

// Routes returns the process routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/processes", h.list)
	r.Get("/process/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/process", h.create)
		r.Put("/process/{id}/update", h.update)
		r.Get("/process/{id}/summary", h.summary)
		r.Get("/processes/searchByTitle", h.searchByTitle)
		r.Get("/processes/searchByLastUpdate", h.searchByLastUpdate)
		r.Get("/processes/searchByProvince", h.searchByProvince)
		r.Get("/processes/searchByStatus", h.searchByStatus)
		r.Get("/processes/searchByType", h.searchByType)
		r.Get("/processes/searchByProcessId", h.searchByProcessID)
	})

	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	processes, err := h.repo.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, processes)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

type processRequest struct {
	Title              string     `json:"title"`
	Offense            string     `json:"offense"`
	Canton             string     `json:"canton"`
	Province           string     `json:"province"`
	ClientGender       string     `json:"clientGender"`
	ClientAge          *int       `json:"clientAge"`
	AccountID          int64      `json:"accountId"`
	ProcessStatus      string     `json:"processStatus"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	ProcessNumber      string     `json:"processNumber"`
	ProcessType        string     `json:"processType"`
	ProcessDescription string     `json:"processDescription"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if req.Title == "" {
		web.WriteError(w, h.logger, apperrors.Validation("invalid process", map[string]string{"title": "required"}))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyProcess)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	status := req.ProcessStatus
	if status == "" {
		status = StatusNotStarted
	}
	startDate := h.now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	p := &Process{
		ID:                 id,
		Title:              req.Title,
		Offense:            req.Offense,
		Canton:             req.Canton,
		Province:           req.Province,
		ClientGender:       req.ClientGender,
		ClientAge:          req.ClientAge,
		AccountID:          req.AccountID,
		ProcessStatus:      status,
		StartDate:          startDate,
		EndDate:            req.EndDate,
		ProcessNumber:      req.ProcessNumber,
		ProcessType:        req.ProcessType,
		ProcessDescription: req.ProcessDescription,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	metrics.RecordProcessCreated()
	web.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req processRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	now := h.now()
	p := &Process{
		ID:                 id,
		Title:              req.Title,
		Offense:            req.Offense,
		Canton:             req.Canton,
		Province:           req.Province,
		ClientGender:       req.ClientGender,
		ClientAge:          req.ClientAge,
		ProcessStatus:      req.ProcessStatus,
		EndDate:            req.EndDate,
		LastUpdate:         &now,
		ProcessNumber:      req.ProcessNumber,
		ProcessType:        req.ProcessType,
		ProcessDescription: req.ProcessDescription,
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}

	updated, err := h.repo.Update(r.Context(), p)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if p.ProcessStatus == StatusNotStarted {
		web.WriteError(w, h.logger, apperrors.BadRequest("process has not started"))
		return
	}

	events, err := h.repo.SummaryEvents(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if len(events) == 0 {
		web.WriteError(w, h.logger, apperrors.NotFound("events for process", id))
		return
	}

	start := events[0].DateStart
	last := h.now()
	if end := events[len(events)-1].DateEnd; end != nil {
		last = *end
	}

	elapsed, err := Elapsed(start, last)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("event dates are not chronological"))
		return
	}

	web.WriteJSON(w, http.StatusOK, Summary{
		ProcessTitle: p.Title,
		DateStart:    start,
		LastUpdate:   last,
		ElapsedTime:  elapsed,
		EventsList:   events,
	})
}

func (h *Handler) searchByTitle(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.SearchByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) searchByProvince(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.SearchByProvince(r.Context(), r.URL.Query().Get("province"))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) searchByStatus(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.SearchByStatus(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) searchByType(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.SearchByType(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) searchByLastUpdate(w http.ResponseWriter, r *http.Request) {
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

	results, err := h.repo.SearchByLastUpdate(r.Context(), start, end)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) searchByProcessID(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("process_id")
	id, err := parseID(raw)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("invalid process_id"))
		return
	}
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.BadRequest("invalid id")
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
