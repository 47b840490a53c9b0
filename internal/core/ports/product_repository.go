package ports

import (
	"context"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products. Every method
// that takes an ID returns domain.ErrProductNotFound for unknown or malformed IDs.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	// Update overwrites only the fields set in patch and returns the new state.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	// Delete hard-removes the product and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.Product, error)
	// DecrementStock atomically subtracts n when at least n units are on hand.
	// Otherwise it changes nothing and returns an insufficient-stock error
	// carrying the current quantity.
	DecrementStock(ctx context.Context, id string, n int) (*domain.Product, error)
	// IncrementStock atomically adds n units.
	IncrementStock(ctx context.Context, id string, n int) (*domain.Product, error)
}
