// Package identity exchanges verified external identity claims for
// bearer credentials. The provider handshake happens outside this
// service; callers arrive with an already verified claim.
package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/account"
	"github.com/openlegal/platform/internal/shared/auth"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
	"github.com/openlegal/platform/internal/shared/metrics"
	"github.com/openlegal/platform/internal/shared/web"
)

// AccountDirectory resolves external identities to local accounts
type AccountDirectory interface {
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
}

// Handler serves the token exchange route
type Handler struct {
	accounts AccountDirectory
	issuer   *auth.Issuer
	logger   zerolog.Logger
}

// NewHandler creates an identity Handler
func NewHandler(accounts AccountDirectory, issuer *auth.Issuer, logger zerolog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		issuer:   issuer,
		logger:   logger.With().Str("module", "identity").Logger(),
	}
}

// Routes returns the identity routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/token", h.exchange)
	return r
}

type claimRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// exchange turns a verified identity claim into a signed bearer token.
// The claim must match a registered account; its role is taken from
// the account record, not the claim.
func (h *Handler) exchange(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, err)
		return
	}
	if req.Email == "" {
		web.WriteError(w, h.logger, apperrors.BadRequest("email is required"))
		return
	}

	acct, err := h.accounts.GetByEmail(r.Context(), req.Email)
	if err != nil {
		metrics.RecordAuthDecision("exchange_rejected")
		web.WriteError(w, h.logger, err)
		return
	}

	token, err := h.issuer.Issue(acct.ID, acct.Email, acct.Role)
	if err != nil {
		web.WriteError(w, h.logger, apperrors.Internal(err))
		return
	}
	metrics.RecordAuthDecision("exchange_granted")
	web.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
