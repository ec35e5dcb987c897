package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onedream/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	payload *models.TokenPayload
	err     error
}

func (f *fakeVerifier) VerifyToken(_ string) (*models.TokenPayload, error) {
	return f.payload, f.err
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name           string
		verifier       *fakeVerifier
		setToken       func(r *http.Request)
		wantStatusCode int
	}{
		{
			name:           "bearer_token_accepted",
			verifier:       &fakeVerifier{payload: &models.TokenPayload{UserID: "user-1"}},
			setToken:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer token") },
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "cookie_token_accepted",
			verifier:       &fakeVerifier{payload: &models.TokenPayload{UserID: "user-1"}},
			setToken:       func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: "token"}) },
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_token_rejected",
			verifier:       &fakeVerifier{},
			setToken:       func(r *http.Request) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid_token_rejected",
			verifier:       &fakeVerifier{err: errors.New("bad token")},
			setToken:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer token") },
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				payload, ok := Payload(r.Context())
				require.True(t, ok)
				assert.Equal(t, "user-1", payload.UserID)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setToken(req)
			rec := httptest.NewRecorder()

			Auth(tt.verifier)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestRequireOperator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("operator_allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPayload(req.Context(), &models.TokenPayload{Role: models.RoleOperator}))
		rec := httptest.NewRecorder()

		RequireOperator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPayload(req.Context(), &models.TokenPayload{Role: models.RoleCustomer}))
		rec := httptest.NewRecorder()

		RequireOperator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no_session_forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		RequireOperator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
