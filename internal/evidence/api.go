package evidence

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
	EventExists(ctx context.Context, eventID int64) (bool, error)
	Create(ctx context.Context, e *Evidence) error
	GetByID(ctx context.Context, id int64) (*Evidence, error)
	ByEvent(ctx context.Context, eventID int64) ([]*Evidence, error)
	ByProcess(ctx context.Context, processID int64) ([]*Evidence, error)
	Update(ctx context.Context, e *Evidence) (*Evidence, error)
	Delete(ctx context.Context, id int64) error
}

// FileStore persists uploaded evidence files
type FileStore interface {
	Save(filename string, contents io.Reader) (string, error)
}

// Handler serves evidence routes
type Handler struct {
	repo     Repository
	store    FileStore
	ids      counter.Source
	maxBytes int64
	logger   zerolog.Logger
	gate     func(http.Handler) http.Handler
}

// NewHandler creates an evidence Handler
func NewHandler(repo Repository, store FileStore, ids counter.Source, maxBytes int64, logger zerolog.Logger, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:     repo,
		store:    store,
		ids:      ids,
		maxBytes: maxBytes,
		logger:   logger.With().Str("module", "evidence").Logger(),
		gate:     gate,
	}
}

// Routes returns the evidence routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/evidence/{id}", h.get)
	r.Get("/evidences/event/{eventId}", h.byEvent)
	r.Get("/evidences/process/{processId}", h.byProcess)

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/evidence", h.create)
		r.Put("/evidence/{id}", h.update)
		r.Delete("/evidence/{id}", h.delete)
		r.Post("/evidence/upload", h.upload)
	})

	return r
}

type evidenceRequest struct {
	EventID      int64  `json:"eventId"`
	EvidenceType string `json:"evidenceType"`
	EvidenceName string `json:"evidenceName"`
	FilePath     string `json:"filePath"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req evidenceRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	exists, err := h.repo.EventExists(r.Context(), req.EventID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if !exists {
		web.WriteError(w, h.logger, apperrors.BadRequest("referenced event does not exist"))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyEvidence)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	e := &Evidence{
		ID:           id,
		EventID:      req.EventID,
		EvidenceType: req.EvidenceType,
		EvidenceName: req.EvidenceName,
		FilePath:     req.FilePath,
	}
	if err := h.repo.Create(r.Context(), e); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, e)
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

func (h *Handler) byEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := web.IDParam(r, "eventId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByEvent(r.Context(), eventID)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) byProcess(w http.ResponseWriter, r *http.Request) {
	processID, err := web.IDParam(r, "processId")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	items, err := h.repo.ByProcess(r.Context(), processID)
	if err != nil {
		web.WriteError(w, h.logger, err)
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
	var req evidenceRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	e := &Evidence{
		ID:           id,
		EvidenceType: req.EvidenceType,
		EvidenceName: req.EvidenceName,
		FilePath:     req.FilePath,
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "evidence deleted"})
}

// upload stores a multipart file and returns its path. The record is
// created separately through the create route.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("file exceeds the upload limit or the form is malformed"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		web.WriteError(w, h.logger, apperrors.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	path, err := h.store.Save(header.Filename, file)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"filePath": path})
}
