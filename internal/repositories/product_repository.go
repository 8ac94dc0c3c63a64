package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/db"
	"loyalty-backend/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrStockExhausted  = errors.New("insufficient stock")
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

// Create inserts a product and its initial lots in one transaction
func (r *ProductRepository) Create(ctx context.Context, req *models.CreateProductRequest) (*models.ProductWithLots, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	product := models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Active:      true,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO products (category_id, name, description, quantity, active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, created_at, updated_at`,
		req.CategoryID, req.Name, req.Description, req.Quantity,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	result := &models.ProductWithLots{Product: product}
	for _, lot := range req.Lots {
		created, err := r.addLot(ctx, tx, product.ID, &lot)
		if err != nil {
			return nil, err
		}
		result.Lots = append(result.Lots, *created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ProductRepository) addLot(ctx context.Context, q db.Queryer, productID int64, req *models.CreateLotRequest) (*models.ProductPrice, error) {
	lot := models.ProductPrice{
		ProductID:   productID,
		Value:       req.Value,
		Batch:       req.Batch,
		PurchaseCap: req.PurchaseCap,
		Active:      true,
	}
	err := q.QueryRow(ctx,
		`INSERT INTO product_prices (product_id, value, batch, purchase_cap, active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, created_at`,
		productID, req.Value, req.Batch, req.PurchaseCap,
	).Scan(&lot.ID, &lot.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product lot: %w", err)
	}
	return &lot, nil
}

// AddLot appends a price lot to an existing product
func (r *ProductRepository) AddLot(ctx context.Context, productID int64, req *models.CreateLotRequest) (*models.ProductPrice, error) {
	return r.addLot(ctx, r.DB, productID, req)
}

// DeactivateLot retires a lot without deleting it: historical order
// items keep referencing it.
func (r *ProductRepository) DeactivateLot(ctx context.Context, lotID int64) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE product_prices SET active = false WHERE id = $1`, lotID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Get returns a product without lots
func (r *ProductRepository) Get(ctx context.Context, q db.Queryer, id int64) (*models.Product, error) {
	var p models.Product
	err := q.QueryRow(ctx,
		`SELECT id, category_id, name, COALESCE(description, ''), quantity, active, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Quantity, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetWithLots returns a product and its active lots ordered by batch
// then id, the order the allocation engine consumes them in.
func (r *ProductRepository) GetWithLots(ctx context.Context, q db.Queryer, id int64) (*models.ProductWithLots, error) {
	product, err := r.Get(ctx, q, id)
	if err != nil {
		return nil, err
	}

	lots, err := r.GetLots(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return &models.ProductWithLots{Product: *product, Lots: lots}, nil
}

// GetLots returns a product's active lots ordered by batch, id
func (r *ProductRepository) GetLots(ctx context.Context, q db.Queryer, productID int64) ([]models.ProductPrice, error) {
	rows, err := q.Query(ctx,
		`SELECT id, product_id, value, batch, purchase_cap, active, created_at
		 FROM product_prices
		 WHERE product_id = $1 AND active = true
		 ORDER BY batch, id`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []models.ProductPrice
	for rows.Next() {
		var lot models.ProductPrice
		if err := rows.Scan(&lot.ID, &lot.ProductID, &lot.Value, &lot.Batch, &lot.PurchaseCap, &lot.Active, &lot.CreatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// ListActive returns active in-stock products with lots, optionally
// filtered by category. Used by the storefront before per-agency
// eligibility filtering.
func (r *ProductRepository) ListActive(ctx context.Context, categoryID int64) ([]models.ProductWithLots, error) {
	query := `SELECT id, category_id, name, COALESCE(description, ''), quantity, active, created_at, updated_at
	          FROM products
	          WHERE active = true AND quantity > 0`
	args := []interface{}{}
	if categoryID != 0 {
		query += ` AND category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.ProductWithLots
	for rows.Next() {
		var p models.ProductWithLots
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Quantity, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		lots, err := r.GetLots(ctx, r.DB, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Lots = lots
	}
	return products, nil
}

// Update edits product fields
func (r *ProductRepository) Update(ctx context.Context, id int64, req *models.UpdateProductRequest) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE products
		 SET category_id = COALESCE(NULLIF($2, 0), category_id),
		     name = COALESCE(NULLIF($3, ''), name),
		     description = COALESCE(NULLIF($4, ''), description),
		     quantity = COALESCE($5, quantity),
		     active = COALESCE($6, active),
		     updated_at = NOW()
		 WHERE id = $1`,
		id, req.CategoryID, req.Name, req.Description, req.Quantity, req.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock conditionally consumes stock inside the checkout
// transaction. The WHERE guard makes oversell impossible even under
// concurrent checkouts of different agencies.
func (r *ProductRepository) DecrementStock(ctx context.Context, q db.Queryer, productID int64, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE products
		 SET quantity = quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND quantity >= $2`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStockExhausted
	}
	return nil
}

// RestoreStock returns cancelled units to inventory, inside the
// cancellation transaction.
func (r *ProductRepository) RestoreStock(ctx context.Context, q db.Queryer, productID int64, quantity int) error {
	tag, err := q.Exec(ctx,
		`UPDATE products
		 SET quantity = quantity + $2, updated_at = NOW()
		 WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
