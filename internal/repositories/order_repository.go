package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/allocation"
	"loyalty-backend/internal/db"
	"loyalty-backend/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// GetPurchaseHistory derives the agency's confirmed purchase history
// for one product from order items of non-cancelled orders. Inside a
// checkout this must run on the checkout transaction (q = tx) so the
// read is consistent with the row lock taken on the agency.
func (r *OrderRepository) GetPurchaseHistory(ctx context.Context, q db.Queryer, agencyID, productID int64) (allocation.History, error) {
	hist := allocation.History{UnitsByLot: make(map[int64]int)}

	rows, err := q.Query(ctx,
		`SELECT oi.price_id, COALESCE(SUM(oi.quantity), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.agency_id = $1 AND oi.product_id = $2 AND o.status != 'CANCELLED'
		 GROUP BY oi.price_id`,
		agencyID, productID,
	)
	if err != nil {
		return hist, err
	}
	defer rows.Close()

	for rows.Next() {
		var priceID int64
		var units int
		if err := rows.Scan(&priceID, &units); err != nil {
			return hist, err
		}
		hist.UnitsByLot[priceID] = units
		hist.TotalUnits += units
	}
	return hist, rows.Err()
}

// Create inserts the order and one item row per allocation slice,
// inside the caller's checkout transaction.
func (r *OrderRepository) Create(ctx context.Context, q db.Queryer, order *models.Order, items []models.OrderItem) error {
	err := q.QueryRow(ctx,
		`INSERT INTO orders (order_number, agency_id, status, total_points)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.AgencyID, order.Status, order.TotalPoints,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err := q.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, price_id, batch, quantity, unit_value, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			order.ID, items[i].ProductID, items[i].PriceID, items[i].Batch,
			items[i].Quantity, items[i].UnitValue, items[i].Subtotal,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// Get returns an order with its items
func (r *OrderRepository) Get(ctx context.Context, id int64) (*models.OrderWithItems, error) {
	var o models.OrderWithItems
	err := r.DB.QueryRow(ctx,
		`SELECT id, order_number, agency_id, status, total_points, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.OrderNumber, &o.AgencyID, &o.Status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	o.Items, err = r.GetItems(ctx, r.DB, id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetForUpdate reads the order under a row lock on the caller's
// transaction. Cancellation goes through this lock so concurrent
// cancels of the same order serialize instead of both crediting.
func (r *OrderRepository) GetForUpdate(ctx context.Context, q db.Queryer, id int64) (*models.Order, error) {
	var o models.Order
	err := q.QueryRow(ctx,
		`SELECT id, order_number, agency_id, status, total_points, created_at, updated_at
		 FROM orders WHERE id = $1
		 FOR UPDATE`, id,
	).Scan(&o.ID, &o.OrderNumber, &o.AgencyID, &o.Status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetItems returns an order's item rows on the caller's queryer.
func (r *OrderRepository) GetItems(ctx context.Context, q db.Queryer, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, product_id, price_id, batch, quantity, unit_value, subtotal
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.PriceID,
			&item.Batch, &item.Quantity, &item.UnitValue, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByAgency returns an agency's orders, newest first
func (r *OrderRepository) ListByAgency(ctx context.Context, agencyID int64, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, order_number, agency_id, status, total_points, created_at, updated_at
		 FROM orders
		 WHERE agency_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		agencyID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.AgencyID, &o.Status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// List returns all orders for the back office
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, order_number, agency_id, status, total_points, created_at, updated_at
		 FROM orders
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.AgencyID, &o.Status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order through fulfillment. Cancelling releases
// the agency's lot history for those units; the points themselves are
// returned by a compensating ADJUSTMENT credit written by the service.
func (r *OrderRepository) UpdateStatus(ctx context.Context, q db.Queryer, id int64, status models.OrderStatus) error {
	tag, err := q.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
