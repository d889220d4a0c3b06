package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/reminder"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// closeWindow is how far ahead the close-appointments view looks
const closeWindow = 72 * time.Hour

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByAccount(ctx context.Context, accountID, id int64) (*Appointment, error)
	ByAccount(ctx context.Context, accountID int64) ([]*Appointment, error)
	ByAccountInRange(ctx context.Context, accountID int64, start, end time.Time) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// ReminderScheduler creates reminders ahead of appointments
type ReminderScheduler interface {
	Schedule(ctx context.Context, appointmentID int64, title string, daysBefore int) (*reminder.Reminder, error)
}

// Handler serves appointment routes
type Handler struct {
	repo      Repository
	scheduler ReminderScheduler
	ids       counter.Source
	logger    zerolog.Logger
	gate      func(http.Handler) http.Handler
	now       func() time.Time
}

// NewHandler creates an appointment Handler
func NewHandler(repo Repository, scheduler ReminderScheduler, ids counter.Source, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:      repo,
		scheduler: scheduler,
		ids:       ids,
		logger:    logger.With().Str("module", "appointment").Logger(),
		gate:      gate,
		now:       time.Now,
	}
}

// Routes returns the appointment routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Get("/account/{accountId}/appointments", h.byAccount)
		r.Get("/account/{accountId}/appointment/{id}", h.getByAccount)
		r.Get("/account/{accountId}/appointments/week", h.weekly)
		r.Get("/account/{accountId}/appointments/close", h.close)
		r.Get("/account/{accountId}/appointments/{year}/{month}", h.byMonth)
		r.Post("/appointment", h.create)
		r.Put("/appointment/{id}", h.update)
		r.Delete("/appointment/{id}", h.delete)
		r.Post("/appointment/{id}/reminder", h.scheduleReminder)
	})

	return r
}

type appointmentRequest struct {
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contactInfo"`
	AccountID   int64     `json:"accountId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyAppointment)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	a := &Appointment{
		ID:          id,
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		AccountID:   req.AccountID,
	}
	if err := h.repo.Create(r.Context(), a); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) byAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := web.IDParam(r, "accountId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByAccount(r.Context(), accountID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := web.IDParam(r, "accountId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	a, err := h.repo.GetByAccount(r.Context(), accountID, id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) byMonth(w http.ResponseWriter, r *http.Request) {
	accountID, err := web.IDParam(r, "accountId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	year, err := web.IDParam(r, "year")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	month, err := web.IDParam(r, "month")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	start, end, err := monthRange(int(year), int(month))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByAccountInRange(r.Context(), accountID, start, end)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) weekly(w http.ResponseWriter, r *http.Request) {
	accountID, err := web.IDParam(r, "accountId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	start, end := weekRange(h.now())
	items, err := h.repo.ByAccountInRange(r.Context(), accountID, start, end)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if len(items) == 0 {
		web.WriteJSON(w, http.StatusOK, map[string]string{"message": "no appointments found for this week"})
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	accountID, err := web.IDParam(r, "accountId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	now := h.now()
	items, err := h.repo.ByAccountInRange(r.Context(), accountID, now, now.Add(closeWindow))
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if len(items) == 0 {
		web.WriteJSON(w, http.StatusOK, map[string]string{"message": "no upcoming appointments"})
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
	var req appointmentRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	a := &Appointment{
		ID:          id,
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
	}
	updated, err := h.repo.Update(r.Context(), a)
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

type scheduleRequest struct {
	Title      string `json:"title"`
	DaysBefore int    `json:"daysBefore"`
}

func (h *Handler) scheduleReminder(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req scheduleRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if req.DaysBefore < 1 {
		web.WriteError(w, h.logger, apperrors.BadRequest("reminders must be scheduled at least 1 day before"))
		return
	}

	if _, err := h.scheduler.Schedule(r.Context(), id, req.Title, req.DaysBefore); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, map[string]string{"message": "reminder created"})
}

// monthRange bounds a calendar month as [first of month, first of next month)
func monthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperrors.BadRequest("month must be between 1 and 12")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// weekRange bounds the Monday-start week containing now
func weekRange(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
