package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/youzhaozhao/ContractClarity/internal/security"
)

func newTestProvider(t *testing.T) *security.TokenProvider {
	t.Helper()
	return security.NewTokenProvider([]byte("test-secret"), time.Hour, 24*time.Hour, security.NewMemoryRevocationSet())
}

func authedHandler(t *testing.T, wantUserID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			t.Error("UserID missing from context")
		}
		if id != wantUserID {
			t.Errorf("UserID = %q, want %q", id, wantUserID)
		}
		if _, ok := BearerToken(r.Context()); !ok {
			t.Error("BearerToken missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := newTestProvider(t)
	access, err := tokens.Issue("u1", security.TokenKindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	RequireAuth(tokens)(authedHandler(t, "u1")).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := newTestProvider(t)
	for _, header := range []string{"", "Basic abc", "Bearer"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		RequireAuth(tokens)(authedHandler(t, "")).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		if code := errorCode(t, rec); code != "missing_token" {
			t.Errorf("header %q: error = %q, want missing_token", header, code)
		}
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expired := security.NewTokenProvider([]byte("test-secret"), -time.Minute, 24*time.Hour, security.NewMemoryRevocationSet())
	access, err := expired.Issue("u1", security.TokenKindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	RequireAuth(expired)(authedHandler(t, "")).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "token_expired" {
		t.Errorf("error = %q, want token_expired", code)
	}
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	tokens := newTestProvider(t)
	refresh, err := tokens.Issue("u1", security.TokenKindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	RequireAuth(tokens)(authedHandler(t, "")).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_token" {
		t.Errorf("error = %q, want invalid_token", code)
	}
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	tokens := newTestProvider(t)
	access, _ := tokens.Issue("u1", security.TokenKindAccess)
	tokens.Revoke(access)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	RequireAuth(tokens)(authedHandler(t, "")).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_token" {
		t.Errorf("error = %q, want invalid_token", code)
	}
}
