package handler

import (
	"strings"
	"time"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
)

type createProductRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

func (r createProductRequest) toInput() ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: strings.TrimSpace(r.Description),
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}
}

type updateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

func (r updateProductRequest) toInput() ports.UpdateProductInput {
	return ports.UpdateProductInput{
		Name:        trimmed(r.Name),
		Category:    trimmed(r.Category),
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: trimmed(r.Description),
		ImageURL:    trimmed(r.ImageURL),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// quantityRequest is the body of purchase and restock. Quantity is a pointer
// so an absent field can be told apart from an explicit zero.
type quantityRequest struct {
	Quantity *int `json:"quantity,omitempty"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       p.Price,
		Quantity:    p.Quantity,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		InStock:     p.InStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type listProductsResponse struct {
	Count int               `json:"count"`
	Items []productResponse `json:"items"`
}

type productItemResponse struct {
	Message string          `json:"message,omitempty"`
	Item    productResponse `json:"item"`
}

type purchaseResponse struct {
	Message   string          `json:"message"`
	Item      productResponse `json:"item"`
	Purchased int             `json:"purchased"`
}

type restockResponse struct {
	Message string          `json:"message"`
	Item    productResponse `json:"item"`
	Added   int             `json:"added"`
}
