package models

import "time"

// Category groups products in the catalog
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a redeemable catalog item. Pricing lives in its lots
// (ProductPrice rows), not on the product itself.
type Product struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"` // stock on hand
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPrice is one price lot (batch) of a product.
//
// PurchaseCap 0 is the "one unit lifetime across any lot" sentinel;
// PurchaseCap N > 0 caps this specific lot at N units per agency.
// Lots are consumed in ascending Batch order.
type ProductPrice struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	Value       int64     `json:"value"` // points per unit
	Batch       int       `json:"batch"`
	PurchaseCap int       `json:"purchase_cap"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductWithLots bundles a product with its active lots, ordered by batch
type ProductWithLots struct {
	Product
	Lots []ProductPrice `json:"lots"`
}

// CatalogProduct is the agency-facing view of an eligible product: the
// lot breakdown and price for a single unit, as decided by the
// allocation engine against that agency's purchase history.
type CatalogProduct struct {
	Product
	UnitPoints int64 `json:"unit_points"` // price of the next unit
}

// CreateProductRequest creates a product with its initial lots
type CreateProductRequest struct {
	CategoryID  int64              `json:"category_id" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Quantity    int                `json:"quantity" validate:"gte=0"`
	Lots        []CreateLotRequest `json:"lots" validate:"dive"`
}

// UpdateProductRequest edits product fields (lots are managed separately)
type UpdateProductRequest struct {
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity" validate:"omitempty,gte=0"`
	Active      *bool  `json:"active"`
}

// CreateLotRequest adds a price lot to a product
type CreateLotRequest struct {
	Value       int64 `json:"value" validate:"gte=0"`
	Batch       int   `json:"batch" validate:"gte=1"`
	PurchaseCap int   `json:"purchase_cap" validate:"gte=0"`
}

// Banner is a hero product highlighted on the storefront. Display is
// still gated per-agency by the allocation engine.
type Banner struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBannerRequest creates a storefront banner
type CreateBannerRequest struct {
	ProductID int64  `json:"product_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	ImageURL  string `json:"image_url"`
	Position  int    `json:"position" validate:"gte=0"`
}
