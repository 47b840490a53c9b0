package domain

import "time"

// Category is the closed set of product categories.
type Category string

const (
	CategoryChocolate   Category = "chocolate"
	CategoryCandy       Category = "candy"
	CategoryCake        Category = "cake"
	CategoryCookie      Category = "cookie"
	CategoryIceCream    Category = "ice-cream"
	CategoryPastry      Category = "pastry"
	CategoryTraditional Category = "traditional"
	CategoryOther       Category = "other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryChocolate,
	CategoryCandy,
	CategoryCake,
	CategoryCookie,
	CategoryIceCream,
	CategoryPastry,
	CategoryTraditional,
	CategoryOther,
}

// Valid reports whether c belongs to Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Product is a sellable item. Quantity is the only stock counter and is never
// negative.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InStock is derived, never stored.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// CanPurchase reports whether n units can be taken from current stock.
func (p *Product) CanPurchase(n int) bool {
	return n >= 1 && p.Quantity >= n
}

// ProductPatch holds the fields of a partial update; nil means "keep".
type ProductPatch struct {
	Name        *string
	Category    *Category
	Price       *float64
	Quantity    *int
	Description *string
	ImageURL    *string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && p.Description == nil && p.ImageURL == nil
}

// Apply overwrites the supplied fields on prod.
func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.ImageURL != nil {
		prod.ImageURL = *p.ImageURL
	}
}

// SortField names a product attribute a listing may be ordered by.
type SortField string

const (
	SortByName        SortField = "name"
	SortByCategory    SortField = "category"
	SortByPrice       SortField = "price"
	SortByQuantity    SortField = "quantity"
	SortByDescription SortField = "description"
	SortByImageURL    SortField = "imageUrl"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

var sortFields = map[SortField]struct{}{
	SortByName: {}, SortByCategory: {}, SortByPrice: {}, SortByQuantity: {},
	SortByDescription: {}, SortByImageURL: {}, SortByCreatedAt: {}, SortByUpdatedAt: {},
}

// ParseSortField returns the sort field for s, or false for unknown names.
func ParseSortField(s string) (SortField, bool) {
	f := SortField(s)
	_, ok := sortFields[f]
	return f, ok
}

// ProductFilter selects products for a listing. Zero values mean "no filter",
// except Sort which defaults to newest first.
type ProductFilter struct {
	Category Category
	Search   string
	InStock  *bool
	SortBy   SortField
	Desc     bool
}
