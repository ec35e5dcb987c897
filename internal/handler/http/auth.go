package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onedream/storefront/internal/models"
)

// AuthService authenticates the storefront operator
type AuthService interface {
	// LoginOperator verifies credentials and returns a session token
	LoginOperator(login, password string) (string, error)
}

// AuthHandler represents HTTP handler for login requests
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler creates new AuthHandler instance
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginOperator issues an operator session token
// 200 — authenticated, body and cookie carry the token;
// 400 — malformed request;
// 401 — wrong login or password.
func (ah *AuthHandler) LoginOperator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ah.svc.LoginOperator(req.Login, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
				return
			}
			writeServiceError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loginResponse{Token: token})
	}
}
