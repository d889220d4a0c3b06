package reminder

import (
	"context"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/shared/metrics"
)

// SchedulerStore is the persistence surface the scheduler needs
type SchedulerStore interface {
	AppointmentInfo(ctx context.Context, appointmentID int64) (*AppointmentInfo, error)
	Create(ctx context.Context, rem *Reminder) error
}

// Scheduler creates reminders a number of calendar days ahead of an
// appointment. Scheduling never sends email.
type Scheduler struct {
	store SchedulerStore
	ids   counter.Source
}

// NewScheduler creates a Scheduler
func NewScheduler(store SchedulerStore, ids counter.Source) *Scheduler {
	return &Scheduler{store: store, ids: ids}
}

// Schedule persists a reminder daysBefore calendar days ahead of the
// appointment. An empty title falls back to the appointment type. A
// notification time already in the past is allowed.
func (s *Scheduler) Schedule(ctx context.Context, appointmentID int64, title string, daysBefore int) (*Reminder, error) {
	appt, err := s.store.AppointmentInfo(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = appt.Type
	}

	id, err := s.ids.Next(ctx, counter.KeyReminder)
	if err != nil {
		return nil, err
	}

	rem := &Reminder{
		ID:            id,
		Title:         title,
		DateTime:      appt.Date.AddDate(0, 0, -daysBefore),
		ActiveFlag:    true,
		AppointmentID: appt.ID,
	}
	if err := s.store.Create(ctx, rem); err != nil {
		return nil, err
	}

	metrics.RecordReminderScheduled()
	return rem, nil
}
