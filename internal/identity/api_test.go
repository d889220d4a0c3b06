package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/account"
	"github.com/openlegal/platform/internal/shared/auth"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

type fakeDirectory struct {
	accounts map[string]*account.Account
}

func (f *fakeDirectory) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	a, ok := f.accounts[email]
	if !ok {
		return nil, apperrors.NotFoundKey("account", email)
	}
	return a, nil
}

func newTestHandler() *Handler {
	dir := &fakeDirectory{accounts: map[string]*account.Account{
		"maria@example.com": {ID: 2, Email: "maria@example.com", Role: auth.RoleLawyer},
	}}
	return NewHandler(dir, auth.NewIssuer("test-secret", time.Hour), zerolog.Nop())
}

func TestExchangeIssuesUsableToken(t *testing.T) {
	h := newTestHandler()

	body := []byte(`{"email":"maria@example.com","name":"Maria","role":"client"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["token"] == "" {
		t.Fatal("expected a token in the response")
	}

	// the issued token must pass the access gate, carrying the account role
	var seen *auth.Claims
	gate := auth.Middleware("test-secret")
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
	})
	gateRec := httptest.NewRecorder()
	gateReq := httptest.NewRequest(http.MethodGet, "/", nil)
	gateReq.Header.Set("Authorization", "Bearer "+got["token"])
	gate(inner).ServeHTTP(gateRec, gateReq)

	if gateRec.Code != http.StatusOK {
		t.Fatalf("expected issued token to be accepted, got %d", gateRec.Code)
	}
	if seen == nil || seen.AccountID != 2 {
		t.Fatalf("expected claims for account 2, got %+v", seen)
	}
	if seen.Role != auth.RoleLawyer {
		t.Errorf("expected role from the account record, got %q", seen.Role)
	}
}

func TestExchangeUnknownIdentity(t *testing.T) {
	h := newTestHandler()

	body := []byte(`{"email":"nobody@example.com"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(body))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestExchangeRequiresEmail(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader([]byte(`{"name":"Maria"}`)))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
