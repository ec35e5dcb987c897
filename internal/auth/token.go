package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/onedream/storefront/internal/models"
)

const tokenTTL = 24 * time.Hour

// tokenClaims carries the session payload inside the JWT
type tokenClaims struct {
	jwt.RegisteredClaims
	UserName string `json:"name"`
	Role     string `json:"role"`
}

// AuthToken issues and verifies signed session tokens
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken signs a token for the given payload
func (at *AuthToken) CreateToken(payload *models.TokenPayload) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		UserName: payload.UserName,
		Role:     payload.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(at.key)
}

// VerifyToken parses and validates a token string and returns its payload
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &models.TokenPayload{
		UserID:   claims.Subject,
		UserName: claims.UserName,
		Role:     claims.Role,
	}, nil
}
