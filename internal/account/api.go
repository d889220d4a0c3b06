package account

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/mail"
	"github.com/openlegal/platform/internal/shared/auth"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/metrics"
	"github.com/openlegal/platform/internal/shared/web"
)

const bcryptCost = 10

const resetTokenTTL = time.Hour

// Repository is the persistence surface the handler needs
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	Update(ctx context.Context, id int64, name, lastname, phoneNumber, email string) (*Account, error)
	Delete(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error
}

// Handler serves account registration, login and management
type Handler struct {
	repo   Repository
	ids    counter.Source
	issuer *auth.Issuer
	mailer mail.Sender
	logger zerolog.Logger
	gate   func(http.Handler) http.Handler
	limit  func(http.Handler) http.Handler
}

// NewHandler creates an account Handler. The gate middleware protects
// mutating routes; limit throttles the credential routes.
func NewHandler(repo Repository, ids counter.Source, issuer *auth.Issuer, mailer mail.Sender, logger zerolog.Logger, gate, limit func(http.Handler) http.Handler) *Handler {
	return &Handler{
		repo:   repo,
		ids:    ids,
		issuer: issuer,
		mailer: mailer,
		logger: logger.With().Str("module", "account").Logger(),
		gate:   gate,
		limit:  limit,
	}
}

// Routes returns the account routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.limit)
		r.Post("/account", h.register)
		r.Post("/account/login", h.login)
		r.Post("/accounts/requestPasswordReset", h.requestPasswordReset)
		r.Post("/accounts/sendRecoveryEmail", h.sendRecoveryEmail)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Get("/accounts", h.list)
		r.Get("/account/{id}", h.get)
		r.Put("/accounts/update/{id}", h.update)
		r.With(auth.RequireRoles(auth.RoleAdmin)).Delete("/accounts/delete/{id}", h.delete)
	})

	return r
}

type registerRequest struct {
	Name        string `json:"name"`
	Lastname    string `json:"lastname"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	details := map[string]string{}
	if req.Email == "" {
		details["email"] = "required"
	}
	if req.Password == "" {
		details["password"] = "required"
	}
	if req.Role != "" && !auth.ValidRole(req.Role) {
		details["role"] = "unknown role"
	}
	if len(details) > 0 {
		web.WriteError(w, h.logger, apperrors.Validation("invalid account", details))
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleClient
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	id, err := h.ids.Next(r.Context(), counter.KeyAccount)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	acc := &Account{
		ID:           id,
		Name:         req.Name,
		Lastname:     req.Lastname,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.repo.Create(r.Context(), acc); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, acc)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	acc, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		metrics.RecordAuthDecision("denied")
		web.WriteError(w, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuthDecision("denied")
		web.WriteError(w, h.logger, apperrors.Unauthorized("incorrect password"))
		return
	}

	token, err := h.issuer.Issue(acc.ID, acc.Email, acc.Role)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}

	metrics.RecordAuthDecision("granted")
	web.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Account: acc})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.repo.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	acc, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, acc)
}

type updateRequest struct {
	Name        string `json:"name"`
	Lastname    string `json:"lastname"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	var req updateRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	acc, err := h.repo.Update(r.Context(), id, req.Name, req.Lastname, req.PhoneNumber, req.Email)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, acc)
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
	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

type resetRequest struct {
	Email string `json:"email"`
}

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	acc, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	if err := h.repo.SetResetToken(r.Context(), acc.ID, token, expires); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{
		"message":    "password reset link sent to email",
		"resetToken": token,
	})
}

type recoveryRequest struct {
	Email      string `json:"email"`
	ResetToken string `json:"resetToken"`
}

func (h *Handler) sendRecoveryEmail(w http.ResponseWriter, r *http.Request) {
	var req recoveryRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	acc, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		web.WriteError(w, h.logger, err)
		return
	}

	msg := mail.Message{
		To:      acc.Email,
		Subject: "Password recovery",
		HTMLBody: "<p>Hello, " + acc.Name + "<br>" +
			"Use the following token to reset your password:<br>" +
			"<strong>" + req.ResetToken + "</strong></p>",
	}
	if err := h.mailer.Send(msg); err != nil {
		web.WriteError(w, h.logger, apperrors.Wrap(err, "failed to send recovery email"))
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"message": "recovery email sent"})
}
