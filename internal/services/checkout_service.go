package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"loyalty-backend/internal/allocation"
	"loyalty-backend/internal/feed"
	"loyalty-backend/internal/metrics"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
)

var (
	// ErrInsufficientBalance: the agency's ledger balance does not cover
	// the order total at confirmation time.
	ErrInsufficientBalance = errors.New("insufficient points balance")

	// ErrProductUnavailable: a line item cannot be fully allocated from
	// the remaining lot capacity (or the product has no active lots).
	// Under concurrency this is how a lost race surfaces: another order
	// consumed the capacity between cart preview and checkout.
	ErrProductUnavailable = errors.New("product not available at requested quantity")

	// ErrOutOfStock: the product's physical stock cannot cover the order.
	ErrOutOfStock = errors.New("insufficient product stock")

	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// CheckoutService confirms orders. Every checkout attempt is one
// database transaction: lock agency row, re-run allocation per line
// item against confirmed history, check balance, write order + items,
// debit the ledger, decrement stock. Any failure rolls back the lot.
type CheckoutService struct {
	pool     *pgxpool.Pool
	agencies *repositories.AgencyRepository
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	ledger   *repositories.LedgerRepository
	feed     *feed.Hub
}

func NewCheckoutService(
	pool *pgxpool.Pool,
	agencies *repositories.AgencyRepository,
	products *repositories.ProductRepository,
	orders *repositories.OrderRepository,
	ledger *repositories.LedgerRepository,
	feedHub *feed.Hub,
) *CheckoutService {
	return &CheckoutService{
		pool:     pool,
		agencies: agencies,
		products: products,
		orders:   orders,
		ledger:   ledger,
		feed:     feedHub,
	}
}

// Checkout confirms a cart as an order for the agency.
func (s *CheckoutService) Checkout(ctx context.Context, agencyID int64, req *models.CheckoutRequest) (*models.OrderWithItems, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidQuantity)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, item.ProductID)
		}
	}
	// Duplicate product lines must be allocated as one quantity. The
	// engine sees history as of before this order, so splitting a
	// product across lines would let each line fill the same lot caps
	// again.
	items := mergeItems(req.Items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent checkouts for this agency: the second one
	// blocks here and re-reads history and balance after the first
	// commits, so two orders can never spend the same points or the
	// same lot capacity.
	agency, err := s.agencies.LockForCheckout(ctx, tx, agencyID)
	if err != nil {
		return nil, err
	}

	var (
		orderItems  []models.OrderItem
		totalPoints int64
		stockNeeded = make(map[int64]int)
		stockOrder  []int64
	)

	for _, item := range items {
		product, err := s.products.GetWithLots(ctx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active || len(product.Lots) == 0 {
			metrics.OrdersRejectedTotal.WithLabelValues("unavailable").Inc()
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}

		hist, err := s.orders.GetPurchaseHistory(ctx, tx, agencyID, item.ProductID)
		if err != nil {
			return nil, err
		}

		result, err := allocation.Distribute(item.Quantity, lotsForAllocation(product.Lots), hist)
		if err != nil {
			return nil, err
		}
		if !result.CanAdd {
			metrics.AllocationInfeasibleTotal.Inc()
			metrics.OrdersRejectedTotal.WithLabelValues("unavailable").Inc()
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}

		for _, alloc := range result.Distribution {
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				PriceID:   alloc.PriceID,
				Batch:     alloc.Batch,
				Quantity:  alloc.Quantity,
				UnitValue: alloc.Value,
				Subtotal:  alloc.Value * int64(alloc.Quantity),
			})
		}
		totalPoints += result.TotalPoints

		if _, seen := stockNeeded[item.ProductID]; !seen {
			stockOrder = append(stockOrder, item.ProductID)
		}
		stockNeeded[item.ProductID] += item.Quantity
	}

	balance, err := s.ledger.GetBalance(ctx, tx, agencyID)
	if err != nil {
		return nil, err
	}
	if balance < totalPoints {
		metrics.OrdersRejectedTotal.WithLabelValues("balance").Inc()
		return nil, fmt.Errorf("%w: balance %d, order total %d", ErrInsufficientBalance, balance, totalPoints)
	}

	order := &models.Order{
		OrderNumber: newOrderNumber(),
		AgencyID:    agencyID,
		Status:      models.OrderStatusConfirmed,
		TotalPoints: totalPoints,
	}
	if err := s.orders.Create(ctx, tx, order, orderItems); err != nil {
		return nil, err
	}

	entry, err := s.ledger.Debit(ctx, tx, agencyID, models.LedgerSourceOrder,
		fmt.Sprintf("%d", order.ID), totalPoints,
		fmt.Sprintf("Order %s", order.OrderNumber))
	if err != nil {
		return nil, err
	}

	for _, productID := range stockOrder {
		if err := s.products.DecrementStock(ctx, tx, productID, stockNeeded[productID]); err != nil {
			if errors.Is(err, repositories.ErrStockExhausted) {
				metrics.OrdersRejectedTotal.WithLabelValues("stock").Inc()
				return nil, fmt.Errorf("%w: product %d", ErrOutOfStock, productID)
			}
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrdersConfirmedTotal.Inc()
	metrics.PointsDebitedTotal.Add(float64(totalPoints))
	s.feed.Publish(entry)

	log.WithFields(log.Fields{
		"component": "checkout",
		"agency":    agency.CNPJ,
		"order":     order.OrderNumber,
		"points":    totalPoints,
	}).Info("order confirmed")

	return &models.OrderWithItems{Order: *order, Items: orderItems}, nil
}

// Cancel voids a confirmed order and returns its points as a
// compensating ADJUSTMENT credit. The original debit stays in the
// ledger untouched; cancelled orders also stop counting toward the
// agency's lot purchase history.
func (s *CheckoutService) Cancel(ctx context.Context, orderID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The row lock serializes concurrent cancels: the loser blocks
	// here, re-reads CANCELLED and writes nothing, so the compensating
	// credit is written at most once per order.
	order, err := s.orders.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil
	}

	if err := s.orders.UpdateStatus(ctx, tx, orderID, models.OrderStatusCancelled); err != nil {
		return err
	}

	// Physical units go back to stock in the same transaction. Lot
	// history releases by itself: cancelled orders stop counting.
	orderItems, err := s.orders.GetItems(ctx, tx, orderID)
	if err != nil {
		return err
	}
	restock, productIDs := unitsByProduct(orderItems)
	for _, productID := range productIDs {
		if err := s.products.RestoreStock(ctx, tx, productID, restock[productID]); err != nil {
			return err
		}
	}

	entry, err := s.ledger.Credit(ctx, tx, order.AgencyID, models.LedgerSourceAdjustment,
		fmt.Sprintf("%d", order.ID), order.TotalPoints,
		fmt.Sprintf("Order %s cancelled", order.OrderNumber))
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.PointsCreditedTotal.Add(float64(order.TotalPoints))
	s.feed.Publish(entry)
	return nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// mergeItems folds duplicate product lines into one, summing their
// quantities and keeping first-seen order.
func mergeItems(items []models.CheckoutItemRequest) []models.CheckoutItemRequest {
	merged := make([]models.CheckoutItemRequest, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if i, seen := index[item.ProductID]; seen {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// unitsByProduct totals an order's units per product, keeping
// first-seen order for deterministic updates.
func unitsByProduct(items []models.OrderItem) (map[int64]int, []int64) {
	units := make(map[int64]int, len(items))
	var productIDs []int64
	for _, item := range items {
		if _, seen := units[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		units[item.ProductID] += item.Quantity
	}
	return units, productIDs
}

// lotsForAllocation maps active price rows to the engine's input type,
// preserving the batch-then-id ordering the repository returns.
func lotsForAllocation(prices []models.ProductPrice) []allocation.Lot {
	lots := make([]allocation.Lot, 0, len(prices))
	for _, p := range prices {
		lots = append(lots, allocation.Lot{
			ID:          p.ID,
			Batch:       p.Batch,
			Value:       p.Value,
			PurchaseCap: p.PurchaseCap,
		})
	}
	return lots
}
