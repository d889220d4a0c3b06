package process

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
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

type fakeRepo struct {
	processes map[int64]*Process
	events    map[int64][]SummaryEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		processes: make(map[int64]*Process),
		events:    make(map[int64][]SummaryEvent),
	}
}

func (f *fakeRepo) Create(_ context.Context, p *Process) error {
	f.processes[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Process, error) {
	p, ok := f.processes[id]
	if !ok {
		return nil, apperrors.NotFound("process", id)
	}
	return p, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*Process, error) {
	out := []*Process{}
	for _, p := range f.processes {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, p *Process) (*Process, error) {
	if _, ok := f.processes[p.ID]; !ok {
		return nil, apperrors.NotFound("process", p.ID)
	}
	f.processes[p.ID] = p
	return p, nil
}

func (f *fakeRepo) SearchByTitle(_ context.Context, _ string) ([]*Process, error) {
	return nil, nil
}
func (f *fakeRepo) SearchByProvince(_ context.Context, _ string) ([]*Process, error) {
	return nil, nil
}
func (f *fakeRepo) SearchByStatus(_ context.Context, _ string) ([]*Process, error) {
	return nil, nil
}
func (f *fakeRepo) SearchByType(_ context.Context, _ string) ([]*Process, error) {
	return nil, nil
}
func (f *fakeRepo) SearchByLastUpdate(_ context.Context, _, _ time.Time) ([]*Process, error) {
	return nil, nil
}

func (f *fakeRepo) SummaryEvents(_ context.Context, processID int64) ([]SummaryEvent, error) {
	return f.events[processID], nil
}

func allowAll(next http.Handler) http.Handler { return next }

func newTestHandler(repo Repository) *Handler {
	return NewHandler(repo, counter.NewMemory(), zerolog.Nop(), allowAll)
}

func TestCreateAllocatesIDAndDefaults(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo)
	fixed := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	body, _ := json.Marshal(map[string]interface{}{
		"title":     "Case A",
		"accountId": 7,
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Process
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("expected allocated id 1, got %d", got.ID)
	}
	if got.ProcessStatus != StatusNotStarted {
		t.Errorf("expected default status %q, got %q", StatusNotStarted, got.ProcessStatus)
	}
	if !got.StartDate.Equal(fixed) {
		t.Errorf("expected start date to default to now, got %v", got.StartDate)
	}
	if got.LastUpdate != nil {
		t.Errorf("expected nil lastUpdate on create, got %v", got.LastUpdate)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	h := newTestHandler(newFakeRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewReader([]byte(`{"accountId":1}`)))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateStampsLastUpdate(t *testing.T) {
	repo := newFakeRepo()
	repo.processes[5] = &Process{ID: 5, Title: "Case B", ProcessStatus: "open"}
	h := newTestHandler(repo)
	fixed := time.Date(2024, time.July, 2, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	body := []byte(`{"title":"Case B","processStatus":"open"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/process/5/update", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got Process
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.LastUpdate == nil || !got.LastUpdate.Equal(fixed) {
		t.Errorf("expected lastUpdate %v, got %v", fixed, got.LastUpdate)
	}
}

func TestSummary(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setup    func(*fakeRepo)
		path     string
		wantCode int
	}{
		{
			name:     "missing process",
			setup:    func(*fakeRepo) {},
			path:     "/process/9/summary",
			wantCode: http.StatusNotFound,
		},
		{
			name: "not started",
			setup: func(f *fakeRepo) {
				f.processes[1] = &Process{ID: 1, Title: "Case", ProcessStatus: StatusNotStarted}
			},
			path:     "/process/1/summary",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "no events",
			setup: func(f *fakeRepo) {
				f.processes[1] = &Process{ID: 1, Title: "Case", ProcessStatus: "open"}
			},
			path:     "/process/1/summary",
			wantCode: http.StatusNotFound,
		},
		{
			name: "invalid id",
			setup: func(*fakeRepo) {},
			path:     "/process/abc/summary",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			tt.setup(repo)
			h := newTestHandler(repo)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("elapsed time between first and last event", func(t *testing.T) {
		repo := newFakeRepo()
		repo.processes[1] = &Process{ID: 1, Title: "Case", ProcessStatus: "open"}
		repo.events[1] = []SummaryEvent{
			{Name: "filing", DateStart: start},
			{Name: "hearing", DateStart: start.AddDate(0, 1, 0), DateEnd: &end},
		}
		h := newTestHandler(repo)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/process/1/summary", nil)
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var got Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		want := ElapsedTime{Months: 3, Weeks: 3, Days: 0}
		if got.ElapsedTime != want {
			t.Errorf("expected elapsed %+v, got %+v", want, got.ElapsedTime)
		}
		if got.ProcessTitle != "Case" {
			t.Errorf("unexpected title %q", got.ProcessTitle)
		}
		if len(got.EventsList) != 2 {
			t.Errorf("expected 2 events, got %d", len(got.EventsList))
		}
	})

	t.Run("open ended last event falls back to now", func(t *testing.T) {
		repo := newFakeRepo()
		repo.processes[1] = &Process{ID: 1, Title: "Case", ProcessStatus: "open"}
		repo.events[1] = []SummaryEvent{{Name: "filing", DateStart: start}}
		h := newTestHandler(repo)
		h.now = func() time.Time { return end }

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/process/1/summary", nil)
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !got.LastUpdate.Equal(end) {
			t.Errorf("expected lastUpdate %v, got %v", end, got.LastUpdate)
		}
	})
}
