package service

import (
	"github.com/onedream/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	// CreateToken signs a token for the given payload
	CreateToken(payload *models.TokenPayload) (string, error)
}

// AuthService authenticates the storefront operator. Customer sessions are
// issued by the storefront frontend and only verified here.
type AuthService struct {
	token         TokenIssuer
	operatorLogin string
	// bcrypt hash of the operator passphrase
	operatorHash string
}

// NewAuthService creates new AuthService instance
func NewAuthService(token TokenIssuer, operatorLogin, operatorHash string) *AuthService {
	return &AuthService{
		token:         token,
		operatorLogin: operatorLogin,
		operatorHash:  operatorHash,
	}
}

// LoginOperator verifies the operator credentials and returns a session token
func (as *AuthService) LoginOperator(login, password string) (string, error) {
	if as.operatorLogin == "" || as.operatorHash == "" {
		return "", models.ErrConfiguration
	}
	if login != as.operatorLogin {
		return "", models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(as.operatorHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(&models.TokenPayload{
		UserID:   "operator",
		UserName: login,
		Role:     models.RoleOperator,
	})
}
