package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/models"
)

var ErrBannerNotFound = errors.New("banner not found")

type BannerRepository struct {
	DB *pgxpool.Pool
}

func NewBannerRepository(db *pgxpool.Pool) *BannerRepository {
	return &BannerRepository{DB: db}
}

func (r *BannerRepository) Create(ctx context.Context, req *models.CreateBannerRequest) (*models.Banner, error) {
	b := models.Banner{
		ProductID: req.ProductID,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		Position:  req.Position,
		Active:    true,
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO banners (product_id, title, image_url, position, active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, created_at`,
		req.ProductID, req.Title, req.ImageURL, req.Position,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListActive returns active banners in display order
func (r *BannerRepository) ListActive(ctx context.Context) ([]models.Banner, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, product_id, title, COALESCE(image_url, ''), position, active, created_at
		 FROM banners
		 WHERE active = true
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Title, &b.ImageURL, &b.Position, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (r *BannerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE banners SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBannerNotFound
	}
	return nil
}

func (r *BannerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBannerNotFound
	}
	return nil
}
