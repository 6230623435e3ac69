package ports

import "context"

// AuthService gates the API behind a single shared password.
type AuthService interface {
	// Login compares password against the configured hash and, on success,
	// returns a signed, time-limited session token.
	// Returns domain.ErrInvalidCredentials on mismatch.
	Login(ctx context.Context, password string) (string, error)
	// Verify validates a session token's signature and expiry.
	// Returns domain.ErrUnauthenticated when the token is unusable.
	Verify(ctx context.Context, token string) error
}
