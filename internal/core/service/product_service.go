package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
	"github.com/sweetshop/inventory-api/internal/core/validation"
)

// ProductService implements the inventory use cases on top of a
// ports.ProductRepository.
type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// List returns every product matching the filter. An unknown sortBy falls back
// to newest first.
func (s *ProductService) List(ctx context.Context, in ports.ListProductsInput) (*ports.ListProductsResult, error) {
	filter := domain.ProductFilter{
		Category: domain.Category(strings.TrimSpace(in.Category)),
		Search:   strings.TrimSpace(in.Search),
		InStock:  in.InStock,
		SortBy:   domain.SortByCreatedAt,
		Desc:     true,
	}
	if field, ok := domain.ParseSortField(in.SortBy); ok {
		filter.SortBy = field
		filter.Desc = strings.EqualFold(in.Order, "desc")
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ports.ListProductsResult{Items: items, Count: len(items)}, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates every field, then persists the product with quantity
// defaulting to zero.
func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Name:        in.Name,
		Category:    domain.Category(in.Category),
		Price:       *in.Price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}

// Update overwrites only the supplied fields.
func (s *ProductService) Update(ctx context.Context, id string, in ports.UpdateProductInput) (*domain.Product, error) {
	in.Name = trimPtr(in.Name)
	in.Category = trimPtr(in.Category)
	in.Description = trimPtr(in.Description)
	in.ImageURL = trimPtr(in.ImageURL)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	patch := domain.ProductPatch{
		Name:        in.Name,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if in.Category != nil {
		c := domain.Category(*in.Category)
		patch.Category = &c
	}

	if patch.Empty() {
		return s.repo.FindByID(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", id).Str("name", deleted.Name).Msg("product deleted")
	return deleted, nil
}

// Purchase takes quantity units out of stock. The repository performs the
// stock check and the decrement as one conditional write.
func (s *ProductService) Purchase(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}

	p, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Int("purchased", quantity).Int("remaining", p.Quantity).Msg("purchase completed")
	return p, nil
}

// Restock adds quantity units. There is no upper bound.
func (s *ProductService) Restock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}

	p, err := s.repo.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Int("added", quantity).Int("quantity", p.Quantity).Msg("product restocked")
	return p, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
