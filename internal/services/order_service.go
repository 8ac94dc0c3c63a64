package services

import (
	"context"
	"errors"
	"fmt"

	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
)

var ErrInvalidStatusChange = errors.New("invalid order status change")

// OrderService covers order reads and fulfillment status changes.
// Cancellation lives on CheckoutService: it must credit points back in
// the same transaction.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.OrderWithItems, error) {
	return s.orders.Get(ctx, id)
}

// GetForAgency returns an order only when it belongs to the agency
func (s *OrderService) GetForAgency(ctx context.Context, agencyID, id int64) (*models.OrderWithItems, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.AgencyID != agencyID {
		return nil, repositories.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByAgency(ctx context.Context, agencyID int64, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByAgency(ctx, agencyID, limit, offset)
}

func (s *OrderService) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.orders.List(ctx, limit, offset)
}

// UpdateStatus moves an order along CONFIRMED -> SHIPPED -> DELIVERED.
// CANCELLED is rejected here: a cancellation must also return points,
// which only CheckoutService.Cancel does.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	switch status {
	case models.OrderStatusShipped, models.OrderStatusDelivered:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatusChange, status)
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusCancelled {
		return fmt.Errorf("%w: order is cancelled", ErrInvalidStatusChange)
	}

	return s.orders.UpdateStatus(ctx, s.orders.DB, id, status)
}
