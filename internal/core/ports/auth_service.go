package ports

import (
	"context"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// RegisterInput carries the registration fields after transport decoding.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// AuthService covers registration, login and per-request token checks.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// Authenticate verifies a bearer token and re-resolves the live account.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// TokenManager signs and verifies session tokens bound to an account ID.
type TokenManager interface {
	Issue(userID string) (string, error)
	// Verify returns domain.ErrInvalidToken or domain.ErrTokenExpired on failure.
	Verify(token string) (string, error)
}

// PasswordHasher is a slow salted one-way hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// LoginGuard throttles repeated failed logins for one subject, a username
// optionally scoped to the client address.
type LoginGuard interface {
	Blocked(ctx context.Context, subject string) (bool, error)
	RecordFailure(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

type clientIPKey struct{}

// WithClientIP attaches the caller's address to ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address set by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
