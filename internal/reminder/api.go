package reminder

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/mail"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/metrics"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, rem *Reminder) error
	GetByID(ctx context.Context, id int64) (*Reminder, error)
	List(ctx context.Context) ([]*Reminder, error)
	Update(ctx context.Context, rem *Reminder) (*Reminder, error)
	Delete(ctx context.Context, id int64) error
	AppointmentInfo(ctx context.Context, appointmentID int64) (*AppointmentInfo, error)
	AccountName(ctx context.Context, accountID int64) (string, error)
}

// Handler serves reminder routes
type Handler struct {
	repo   Repository
	ids    counter.Source
	mailer mail.Sender
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
}

// NewHandler creates a reminder Handler
func NewHandler(repo Repository, ids counter.Source, mailer mail.Sender, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		mailer: mailer,
		logger: logger.With().Str("module", "reminder").Logger(),
		gate:   gate,
	}
}

// Routes returns the reminder routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/reminders", h.list)
	r.Get("/reminder/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/reminder", h.create)
		r.Put("/reminder/{id}", h.update)
		r.Delete("/reminder/{id}", h.delete)
		r.Post("/reminder/{id}/emailNotification", h.emailNotification)
	})

	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.repo.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, reminders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	rem, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, rem)
}

type reminderRequest struct {
	Title         string    `json:"title"`
	DateTime      time.Time `json:"dateTime"`
	ActiveFlag    bool      `json:"activeFlag"`
	AppointmentID int64     `json:"appointmentId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyReminder)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	rem := &Reminder{
		ID:            id,
		Title:         req.Title,
		DateTime:      req.DateTime,
		ActiveFlag:    req.ActiveFlag,
		AppointmentID: req.AppointmentID,
	}
	if err := h.repo.Create(r.Context(), rem); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	metrics.RecordReminderScheduled()
	web.WriteJSON(w, http.StatusCreated, rem)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req reminderRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	rem := &Reminder{ID: id, Title: req.Title, DateTime: req.DateTime, ActiveFlag: req.ActiveFlag}
	updated, err := h.repo.Update(r.Context(), rem)
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "reminder deleted"})
}

type emailRequest struct {
	EmailReceiver string `json:"emailReceiver"`
}

// emailNotification composes the reminder email from the reminder, its
// appointment and the owning account, and hands it to the mail transport
func (h *Handler) emailNotification(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req emailRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if req.EmailReceiver == "" {
		web.WriteError(w, h.logger, apperrors.BadRequest("emailReceiver is required"))
		return
	}

	msg, err := h.composeEmail(r.Context(), id, req.EmailReceiver)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	if err := h.mailer.Send(*msg); err != nil {
		metrics.RecordReminderEmail("failed")
		web.WriteError(w, h.logger, apperrors.Wrap(err, "failed to send reminder email"))
		return
	}

	metrics.RecordReminderEmail("sent")
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "reminder sent"})
}

func (h *Handler) composeEmail(ctx context.Context, reminderID int64, receiver string) (*mail.Message, error) {
	rem, err := h.repo.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	appt, err := h.repo.AppointmentInfo(ctx, rem.AppointmentID)
	if err != nil {
		return nil, err
	}
	name, err := h.repo.AccountName(ctx, appt.AccountID)
	if err != nil {
		return nil, err
	}

	return &mail.Message{
		To:      receiver,
		Subject: "Recordatorio:" + rem.Title,
		HTMLBody: "<p>Tienes un pendiente," + name + "<br>" +
			"<strong>Tipo:</strong>" + appt.Type + "<br>" +
			"<strong>Fecha:</strong>" + appt.Date.Format(time.RFC1123) + "<br>" +
			"<strong>Detalles:</strong>" + appt.Description + "<br>" +
			"<strong>Información del contacto:</strong>" + appt.ContactInfo + "<br>" +
			"</p>",
	}, nil
}
