package profile

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/counter"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/web"
)

// Repository is the persistence surface the handler needs
type Repository interface {
	CreateProfile(ctx context.Context, p *UserProfile) error
	GetProfile(ctx context.Context, id int64) (*UserProfile, error)
	ListProfiles(ctx context.Context) ([]*UserProfile, error)
	UpdateProfile(ctx context.Context, p *UserProfile) (*UserProfile, error)
	SetProfilePicture(ctx context.Context, id int64, path string) (*UserProfile, error)
	DeleteProfile(ctx context.Context, id int64) error

	CreateQualification(ctx context.Context, q *Qualification) error
	GetQualification(ctx context.Context, id int64) (*Qualification, error)
	ListQualifications(ctx context.Context) ([]*Qualification, error)
	UpdateQualification(ctx context.Context, q *Qualification) (*Qualification, error)
	DeleteQualification(ctx context.Context, id int64) error
}

// FileStore saves uploaded images and returns their stored path
type FileStore interface {
	Save(filename string, r io.Reader) (string, error)
}

// Handler serves profile and qualification routes
type Handler struct {
	repo     Repository
	store    FileStore
	ids      counter.Source
	logger   zerolog.Logger
	gate     func(http.Handler) http.Handler
	maxBytes int64
}

// NewHandler creates a profile Handler
func NewHandler(repo Repository, store FileStore, ids counter.Source, maxBytes int64, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:     repo,
		store:    store,
		ids:      ids,
		logger:   logger.With().Str("module", "profile").Logger(),
		gate:     gate,
		maxBytes: maxBytes,
	}
}

// Routes returns the profile and qualification routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/profiles", h.listProfiles)
	r.Get("/profile/{id}", h.getProfile)
	r.Get("/qualifications", h.listQualifications)
	r.Get("/qualification/{id}", h.getQualification)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/profile", h.createProfile)
		r.Put("/profile/update/{id}", h.updateProfile)
		r.Delete("/profile/delete/{id}", h.deleteProfile)
		r.Post("/profile/uploadImage/{id}", h.uploadImage)
		r.Post("/qualification", h.createQualification)
		r.Put("/qualification/update/{id}", h.updateQualification)
		r.Delete("/qualification/delete/{id}", h.deleteQualification)
	})

	return r
}

type profileRequest struct {
	Title          string `json:"title"`
	Bio            string `json:"bio"`
	Address        string `json:"address"`
	ProfilePicture string `json:"profilePicture"`
	AccountID      int64  `json:"accountId"`
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListProfiles(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	p, err := h.repo.GetProfile(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyProfile)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	p := &UserProfile{
		ID:             id,
		Title:          req.Title,
		Bio:            req.Bio,
		Address:        req.Address,
		ProfilePicture: req.ProfilePicture,
		AccountID:      req.AccountID,
	}
	if err := h.repo.CreateProfile(r.Context(), p); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req profileRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	p := &UserProfile{
		ID:             id,
		Title:          req.Title,
		Bio:            req.Bio,
		Address:        req.Address,
		ProfilePicture: req.ProfilePicture,
		AccountID:      req.AccountID,
	}
	updated, err := h.repo.UpdateProfile(r.Context(), p)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteProfile(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "profile deleted"})
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("could not parse upload"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("image file is required"))
		return
	}
	defer file.Close()

	path, err := h.store.Save(header.Filename, file)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}
	updated, err := h.repo.SetProfilePicture(r.Context(), id, path)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

type qualificationRequest struct {
	Role              string `json:"role"`
	Institution       string `json:"institution"`
	Place             string `json:"place"`
	StartYear         int    `json:"startYear"`
	EndYear           int    `json:"endYear"`
	QualificationType string `json:"qualificationType"`
	ProfileID         int64  `json:"profileId"`
}

func (h *Handler) listQualifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListQualifications(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getQualification(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	q, err := h.repo.GetQualification(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) createQualification(w http.ResponseWriter, r *http.Request) {
	var req qualificationRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyQualification)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	q := &Qualification{
		ID:                id,
		Role:              req.Role,
		Institution:       req.Institution,
		Place:             req.Place,
		StartYear:         req.StartYear,
		EndYear:           req.EndYear,
		QualificationType: req.QualificationType,
		ProfileID:         req.ProfileID,
	}
	if err := h.repo.CreateQualification(r.Context(), q); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, q)
}

func (h *Handler) updateQualification(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req qualificationRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	q := &Qualification{
		ID:                id,
		Role:              req.Role,
		Institution:       req.Institution,
		Place:             req.Place,
		StartYear:         req.StartYear,
		EndYear:           req.EndYear,
		QualificationType: req.QualificationType,
		ProfileID:         req.ProfileID,
	}
	updated, err := h.repo.UpdateQualification(r.Context(), q)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteQualification(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteQualification(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "qualification deleted"})
}
