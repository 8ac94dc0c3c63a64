package models

import "time"

// OrderStatus tracks an order through fulfillment
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a confirmed redemption. TotalPoints always equals the sum of
// its items and the absolute value of the ORDER ledger debit written in
// the same transaction.
type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	AgencyID    int64       `json:"agency_id"`
	Status      OrderStatus `json:"status"`
	TotalPoints int64       `json:"total_points"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one (product, lot) slice of an order, mirroring the
// allocation engine's distribution: Quantity units from PriceID at
// UnitValue points each.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	PriceID   int64 `json:"price_id"`
	Batch     int   `json:"batch"`
	Quantity  int   `json:"quantity"`
	UnitValue int64 `json:"unit_value"`
	Subtotal  int64 `json:"subtotal"`
}

// OrderWithItems is the order detail view
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// CheckoutItemRequest is one requested line of a checkout: the lot
// breakdown is decided server-side by the allocation engine, so the
// client only names product and quantity.
type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest confirms a cart as an order
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CartPreviewRequest asks for a non-binding allocation preview
type CartPreviewRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}
