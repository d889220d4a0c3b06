package reminder

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/mail"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

type fakeRepo struct {
	fakeStore
	reminders map[int64]*Reminder
	names     map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		fakeStore: fakeStore{appointments: make(map[int64]*AppointmentInfo)},
		reminders: make(map[int64]*Reminder),
		names:     make(map[int64]string),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Reminder, error) {
	rem, ok := f.reminders[id]
	if !ok {
		return nil, apperrors.NotFound("reminder", id)
	}
	return rem, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*Reminder, error) {
	out := []*Reminder{}
	for _, rem := range f.reminders {
		out = append(out, rem)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, rem *Reminder) (*Reminder, error) {
	if _, ok := f.reminders[rem.ID]; !ok {
		return nil, apperrors.NotFound("reminder", rem.ID)
	}
	f.reminders[rem.ID] = rem
	return rem, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.reminders[id]; !ok {
		return apperrors.NotFound("reminder", id)
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeRepo) AccountName(_ context.Context, accountID int64) (string, error) {
	name, ok := f.names[accountID]
	if !ok {
		return "", apperrors.NotFound("account", accountID)
	}
	return name, nil
}

func allowAll(next http.Handler) http.Handler { return next }

func seededRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.reminders[1] = &Reminder{ID: 1, Title: "hearing prep", AppointmentID: 5,
		DateTime: time.Date(2024, time.June, 7, 9, 0, 0, 0, time.UTC), ActiveFlag: true}
	repo.appointments[5] = &AppointmentInfo{
		ID: 5, Type: "hearing", Description: "bring the file", ContactInfo: "court office",
		Date: time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), AccountID: 2,
	}
	repo.names[2] = "Maria"
	return repo
}

func TestEmailNotification(t *testing.T) {
	repo := seededRepo()
	mock := mail.NewMock()
	h := NewHandler(repo, counter.NewMemory(), mock, zerolog.Nop(), allowAll)

	body := []byte(`{"emailReceiver":"maria@example.com"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reminder/1/emailNotification", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(mock.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.Messages))
	}

	msg := mock.Messages[0]
	if msg.To != "maria@example.com" {
		t.Errorf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Recordatorio:hearing prep" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Maria", "hearing", "bring the file", "court office"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestEmailNotificationMissingReminder(t *testing.T) {
	h := NewHandler(newFakeRepo(), counter.NewMemory(), mail.NewMock(), zerolog.Nop(), allowAll)

	body := []byte(`{"emailReceiver":"x@example.com"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reminder/9/emailNotification", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestEmailNotificationDeliveryFailure(t *testing.T) {
	repo := seededRepo()
	mock := mail.NewMock()
	mock.Err = errors.New("smtp unavailable")
	h := NewHandler(repo, counter.NewMemory(), mock, zerolog.Nop(), allowAll)

	body := []byte(`{"emailReceiver":"maria@example.com"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reminder/1/emailNotification", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestEmailNotificationRequiresReceiver(t *testing.T) {
	h := NewHandler(seededRepo(), counter.NewMemory(), mail.NewMock(), zerolog.Nop(), allowAll)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reminder/1/emailNotification", bytes.NewReader([]byte(`{}`)))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
