package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func issueTestToken(t *testing.T, accountID int64, email, role string) string {
	t.Helper()
	issuer := NewIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(accountID, email, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestMiddlewareMissingHeader(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareWrongSecret(t *testing.T) {
	token := issueTestToken(t, 1, "a@example.com", RoleLawyer)

	handler := Middleware("another-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareValidToken(t *testing.T) {
	token := issueTestToken(t, 42, "lawyer@example.com", RoleLawyer)

	var got *Claims
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from context")
		}
		got = claims
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.AccountID != 42 {
		t.Errorf("expected account id 42, got %d", got.AccountID)
	}
	if got.Email != "lawyer@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}
	if got.Role != RoleLawyer {
		t.Errorf("unexpected role %q", got.Role)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue(1, "a@example.com", RoleClient)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		allow  []string
		want   int
	}{
		{"matching role", &Claims{Role: RoleAdmin}, []string{RoleAdmin}, http.StatusOK},
		{"one of several", &Claims{Role: RoleLawyer}, []string{RoleAdmin, RoleLawyer}, http.StatusOK},
		{"wrong role", &Claims{Role: RoleClient}, []string{RoleAdmin}, http.StatusForbidden},
		{"no claims", nil, []string{RoleAdmin}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRoles(tt.allow...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleLawyer, RoleAssistant, RoleClient} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if ValidRole("superuser") {
		t.Error("expected unknown role to be invalid")
	}
}
