package product

import (
	"time"

	productDatamodel "github.com/designxcel/storefront/internal/core/datamodel/product"
)

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	StockCount  int       `json:"stockCount"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) IsPublished() bool {
	return p.IsActive
}

func (p *Product) InStock() bool {
	return p.StockCount > 0
}

func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		InStock:     p.InStock(),
	}
}

func NewProduct(name, slug, description string, priceCents int64, currency string, stockCount int) *Product {
	now := time.Now()
	if currency == "" {
		currency = "USD"
	}
	return &Product{
		Name:        name,
		Slug:        slug,
		Description: description,
		PriceCents:  priceCents,
		Currency:    currency,
		StockCount:  stockCount,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(p *Product) *productDatamodel.Product {
	return &productDatamodel.Product{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		StockCount:  p.StockCount,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *productDatamodel.Product) *Product {
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		StockCount:  p.StockCount,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
