package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/danapixels/stampboard/internal/core/domain"
)

// AuthService implements the shared-password login gate. There are no user
// accounts: a single bcrypt hash guards every protected route, and a
// successful login yields a short-lived HS256 session token.
type AuthService struct {
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{passwordHash: passwordHash, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// TokenTTL returns the configured session lifetime, used for cookie expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Login validates the shared password and issues a session token.
func (s *AuthService) Login(_ context.Context, password string) (string, error) {
	if password == "" || s.passwordHash == "" {
		return "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "visitor",
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// Verify checks a session token's signature and expiry.
func (s *AuthService) Verify(_ context.Context, token string) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return domain.ErrUnauthenticated
	}
	return nil
}
