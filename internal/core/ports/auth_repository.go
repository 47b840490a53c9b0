package ports

import (
	"context"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// AuthRepository defines account persistence.
type AuthRepository interface {
	// Create inserts the account and returns it with its generated ID.
	// A duplicate username yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername matches the username exactly (case-sensitive).
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound for unknown or malformed IDs.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
