// Package middleware holds the HTTP middleware: bearer auth, CORS, and
// request logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
)

type contextKey string

const (
	userIDKey      contextKey = "user_id"
	bearerTokenKey contextKey = "bearer_token"
)

// UserID returns the authenticated user id set by RequireAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// BearerToken returns the raw access token set by RequireAuth. Logout needs
// it to revoke the presented credential.
func BearerToken(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(bearerTokenKey).(string)
	return tok, ok
}

// RequireAuth verifies the Authorization bearer token as an access token and
// injects the user id and raw token into the request context. Failures get a
// 401 with a code distinguishing a missing, expired, or invalid credential.
func RequireAuth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpx.Error(w, http.StatusUnauthorized, "missing_token", "authorization required")
				return
			}
			claims, err := tokens.Verify(raw, security.TokenKindAccess)
			if err != nil {
				code := "invalid_token"
				if errors.Is(err, security.ErrTokenExpired) {
					code = "token_expired"
				}
				httpx.Error(w, http.StatusUnauthorized, code, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, bearerTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
