package product

// ProductResponse is the public catalog shape: no stock counts or internal
// flags, just what the storefront renders.
type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	InStock     bool   `json:"inStock"`
}

type CatalogResponse struct {
	Products []ProductResponse `json:"products"`
}

type CreateProductDTO struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	StockCount  int    `json:"stockCount"`
}

type UpdateProductDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"priceCents"`
	StockCount  *int    `json:"stockCount"`
	IsActive    *bool   `json:"isActive"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateProductDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.Slug == "" {
		return ValidationError{Msg: "slug is required"}
	}
	if d.PriceCents <= 0 {
		return ValidationError{Msg: "priceCents must be positive"}
	}
	if d.StockCount < 0 {
		return ValidationError{Msg: "stockCount cannot be negative"}
	}
	return nil
}
