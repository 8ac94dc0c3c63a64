package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	DB *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	c := models.Category{Name: name, Active: true}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO categories (name, active) VALUES ($1, true) RETURNING id, created_at`,
		name,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, active, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, active, created_at FROM categories WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE categories SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
