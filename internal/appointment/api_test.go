package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/reminder"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

type fakeRepo struct {
	items map[int64]*Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[int64]*Appointment)}
}

func (f *fakeRepo) Create(_ context.Context, a *Appointment) error {
	f.items[a.ID] = a
	return nil
}

func (f *fakeRepo) GetByAccount(_ context.Context, accountID, id int64) (*Appointment, error) {
	a, ok := f.items[id]
	if !ok || a.AccountID != accountID {
		return nil, apperrors.NotFound("appointment", id)
	}
	return a, nil
}

func (f *fakeRepo) ByAccount(_ context.Context, accountID int64) ([]*Appointment, error) {
	out := []*Appointment{}
	for _, a := range f.items {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ByAccountInRange(_ context.Context, accountID int64, start, end time.Time) ([]*Appointment, error) {
	out := []*Appointment{}
	for _, a := range f.items {
		if a.AccountID == accountID && !a.Date.Before(start) && a.Date.Before(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, a *Appointment) (*Appointment, error) {
	if _, ok := f.items[a.ID]; !ok {
		return nil, apperrors.NotFound("appointment", a.ID)
	}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("appointment", id)
	}
	delete(f.items, id)
	return nil
}

type fakeScheduler struct {
	calls int
	err   error
}

func (f *fakeScheduler) Schedule(_ context.Context, appointmentID int64, title string, daysBefore int) (*reminder.Reminder, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &reminder.Reminder{ID: 1, AppointmentID: appointmentID, Title: title}, nil
}

func allowAll(next http.Handler) http.Handler { return next }

func newTestHandler(repo Repository, sched ReminderScheduler) *Handler {
	return NewHandler(repo, sched, counter.NewMemory(), zerolog.Nop(), allowAll)
}

func TestScheduleReminderRejectsShortNotice(t *testing.T) {
	sched := &fakeScheduler{}
	h := newTestHandler(newFakeRepo(), sched)

	for _, days := range []int{0, -1} {
		body, _ := json.Marshal(map[string]interface{}{"title": "t", "daysBefore": days})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/appointment/5/reminder", bytes.NewReader(body))
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("daysBefore=%d: expected 400, got %d", days, rec.Code)
		}
	}
	if sched.calls != 0 {
		t.Errorf("expected scheduler not to run, got %d calls", sched.calls)
	}
}

func TestScheduleReminderCreates(t *testing.T) {
	sched := &fakeScheduler{}
	h := newTestHandler(newFakeRepo(), sched)

	body := []byte(`{"title":"prep","daysBefore":3}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointment/5/reminder", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if sched.calls != 1 {
		t.Errorf("expected 1 scheduler call, got %d", sched.calls)
	}
}

func TestScheduleReminderMissingAppointment(t *testing.T) {
	sched := &fakeScheduler{err: apperrors.NotFound("appointment", 5)}
	h := newTestHandler(newFakeRepo(), sched)

	body := []byte(`{"daysBefore":2}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointment/5/reminder", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestByMonthFiltersToCalendarMonth(t *testing.T) {
	repo := newFakeRepo()
	repo.items[1] = &Appointment{ID: 1, AccountID: 2, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}
	repo.items[2] = &Appointment{ID: 2, AccountID: 2, Date: time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC)}
	repo.items[3] = &Appointment{ID: 3, AccountID: 2, Date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)}
	repo.items[4] = &Appointment{ID: 4, AccountID: 9, Date: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)}
	h := newTestHandler(repo, &fakeScheduler{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/account/2/appointments/2024/6", nil)
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []*Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(got))
	}
	for _, a := range got {
		if a.Date.Month() != time.June || a.AccountID != 2 {
			t.Errorf("unexpected appointment in month view: %+v", a)
		}
	}
}

func TestByMonthValidatesMonth(t *testing.T) {
	h := newTestHandler(newFakeRepo(), &fakeScheduler{})

	for _, path := range []string{
		"/account/2/appointments/2024/13",
		"/account/2/appointments/2024/0",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestWeekRangeStartsMonday(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "midweek",
			now:       time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC), // Wednesday
			wantStart: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday",
			now:       time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday",
			now:       time.Date(2024, time.June, 16, 10, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := weekRange(tt.now)
			if !start.Equal(tt.wantStart) {
				t.Errorf("expected start %v, got %v", tt.wantStart, start)
			}
			if !end.Equal(tt.wantStart.AddDate(0, 0, 7)) {
				t.Errorf("unexpected end %v", end)
			}
		})
	}
}

func TestCloseUsesSeventyTwoHourWindow(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	repo.items[1] = &Appointment{ID: 1, AccountID: 2, Date: now.Add(time.Hour)}
	repo.items[2] = &Appointment{ID: 2, AccountID: 2, Date: now.Add(71 * time.Hour)}
	repo.items[3] = &Appointment{ID: 3, AccountID: 2, Date: now.Add(80 * time.Hour)}
	repo.items[4] = &Appointment{ID: 4, AccountID: 2, Date: now.Add(-time.Hour)}
	h := newTestHandler(repo, &fakeScheduler{})
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/account/2/appointments/close", nil)
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []*Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 close appointments, got %d", len(got))
	}
}
