package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

type fakeRepo struct {
	profiles       map[int64]*UserProfile
	qualifications map[int64]*Qualification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:       make(map[int64]*UserProfile),
		qualifications: make(map[int64]*Qualification),
	}
}

func (f *fakeRepo) CreateProfile(_ context.Context, p *UserProfile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProfile(_ context.Context, id int64) (*UserProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile", id)
	}
	return p, nil
}

func (f *fakeRepo) ListProfiles(_ context.Context) ([]*UserProfile, error) {
	out := []*UserProfile{}
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, p *UserProfile) (*UserProfile, error) {
	if _, ok := f.profiles[p.ID]; !ok {
		return nil, apperrors.NotFound("profile", p.ID)
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeRepo) SetProfilePicture(_ context.Context, id int64, path string) (*UserProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile", id)
	}
	p.ProfilePicture = path
	return p, nil
}

func (f *fakeRepo) DeleteProfile(_ context.Context, id int64) error {
	if _, ok := f.profiles[id]; !ok {
		return apperrors.NotFound("profile", id)
	}
	delete(f.profiles, id)
	return nil
}

func (f *fakeRepo) CreateQualification(_ context.Context, q *Qualification) error {
	f.qualifications[q.ID] = q
	return nil
}

func (f *fakeRepo) GetQualification(_ context.Context, id int64) (*Qualification, error) {
	q, ok := f.qualifications[id]
	if !ok {
		return nil, apperrors.NotFound("qualification", id)
	}
	return q, nil
}

func (f *fakeRepo) ListQualifications(_ context.Context) ([]*Qualification, error) {
	out := []*Qualification{}
	for _, q := range f.qualifications {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeRepo) UpdateQualification(_ context.Context, q *Qualification) (*Qualification, error) {
	if _, ok := f.qualifications[q.ID]; !ok {
		return nil, apperrors.NotFound("qualification", q.ID)
	}
	f.qualifications[q.ID] = q
	return q, nil
}

func (f *fakeRepo) DeleteQualification(_ context.Context, id int64) error {
	if _, ok := f.qualifications[id]; !ok {
		return apperrors.NotFound("qualification", id)
	}
	delete(f.qualifications, id)
	return nil
}

type fakeStore struct {
	saved []string
}

func (f *fakeStore) Save(filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	path := "uploads/" + filename
	f.saved = append(f.saved, path)
	return path, nil
}

func allowAll(next http.Handler) http.Handler { return next }

func newTestHandler(repo Repository, store FileStore) *Handler {
	return NewHandler(repo, store, counter.NewMemory(), 1<<20, zerolog.Nop(), allowAll)
}

func TestCreateProfileAllocatesID(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo, &fakeStore{})

	body := []byte(`{"title":"Attorney","bio":"civil law","accountId":2}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("expected allocated id 1, got %d", got.ID)
	}
}

func TestQualificationsUseOwnSequence(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHandler(repo, &fakeStore{})
	router := h.Routes()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader([]byte(`{"title":"Attorney"}`)))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("profile create: expected 201, got %d", rec.Code)
	}

	body := []byte(`{"role":"lawyer","institution":"UNAM","startYear":2010,"endYear":2015,"profileId":1}`)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/qualification", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("qualification create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got Qualification
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("expected qualification sequence to start at 1, got %d", got.ID)
	}
}

func TestUploadImageStoresPath(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles[4] = &UserProfile{ID: 4, Title: "Attorney"}
	store := &fakeStore{}
	h := newTestHandler(repo, store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "portrait.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile/uploadImage/4", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.profiles[4].ProfilePicture != "uploads/portrait.png" {
		t.Errorf("expected stored picture path, got %q", repo.profiles[4].ProfilePicture)
	}
	if len(store.saved) != 1 {
		t.Errorf("expected one stored file, got %d", len(store.saved))
	}
}

func TestUploadImageRequiresFile(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles[4] = &UserProfile{ID: 4}
	h := newTestHandler(repo, &fakeStore{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("caption", "no file here")
	mw.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile/uploadImage/4", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
