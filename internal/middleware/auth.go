package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/onedream/storefront/internal/models"
)

type contextKey int

const (
	contextKeyPayload contextKey = iota
)

// TokenVerifier validates session tokens
type TokenVerifier interface {
	// VerifyToken parses and validates a token string and returns its payload
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

// token is taken from the Authorization header, falling back to the
// auth_token cookie set by the storefront frontend
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// Auth verifies the session token and passes its payload to the context
func Auth(tv TokenVerifier) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := tv.VerifyToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyPayload, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator rejects requests whose session is not an operator session
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := Payload(r.Context())
		if !ok || payload.Role != models.RoleOperator {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Payload extracts the session token payload from context
func Payload(ctx context.Context) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(contextKeyPayload).(*models.TokenPayload)
	return payload, ok
}

// WithPayload returns a context carrying the given session payload.
// Intended for handler tests.
func WithPayload(ctx context.Context, payload *models.TokenPayload) context.Context {
	return context.WithValue(ctx, contextKeyPayload, payload)
}
