package ports

import (
	"context"

	"github.com/sweetshop/inventory-api/internal/core/domain"
)

// ListProductsInput carries the raw listing query.
type ListProductsInput struct {
	Category string
	Search   string
	// InStock is tri-state: nil means no stock filter.
	InStock *bool
	SortBy  string
	Order   string
}

// ListProductsResult is returned by List.
type ListProductsResult struct {
	Items []*domain.Product
	Count int
}

// CreateProductInput holds a new product's fields.
type CreateProductInput struct {
	Name        string   `json:"name"        validate:"required,max=100"`
	Category    string   `json:"category"    validate:"required,oneof=chocolate candy cake cookie ice-cream pastry traditional other"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=500"`
	ImageURL    string   `json:"imageUrl"`
}

// UpdateProductInput holds a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=100"`
	Category    *string  `json:"category"    validate:"omitempty,oneof=chocolate candy cake cookie ice-cream pastry traditional other"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	ImageURL    *string  `json:"imageUrl"`
}

// ProductService defines the inventory use cases.
type ProductService interface {
	List(ctx context.Context, in ListProductsInput) (*ListProductsResult, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	Purchase(ctx context.Context, id string, quantity int) (*domain.Product, error)
	Restock(ctx context.Context, id string, quantity int) (*domain.Product, error)
}
