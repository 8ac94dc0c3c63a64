package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/db"
	"loyalty-backend/internal/models"
)

type ImportRepository struct {
	DB *pgxpool.Pool
}

func NewImportRepository(db *pgxpool.Pool) *ImportRepository {
	return &ImportRepository{DB: db}
}

// CreateBatch records an import batch inside the crediting transaction
func (r *ImportRepository) CreateBatch(ctx context.Context, q db.Queryer, batch *models.ImportBatch) error {
	err := q.QueryRow(ctx,
		`INSERT INTO import_batches (id, file_name, item_count, credited_rows, skipped_rows, total_points, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		batch.ID, batch.FileName, batch.ItemCount, batch.CreditedRows,
		batch.SkippedRows, batch.TotalPoints, batch.CreatedBy,
	).Scan(&batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	return nil
}

// ListBatches returns import batches, newest first
func (r *ImportRepository) ListBatches(ctx context.Context, limit, offset int) ([]models.ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, COALESCE(file_name, ''), item_count, credited_rows, skipped_rows, total_points, created_by, created_at
		 FROM import_batches
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []models.ImportBatch
	for rows.Next() {
		var b models.ImportBatch
		if err := rows.Scan(&b.ID, &b.FileName, &b.ItemCount, &b.CreditedRows, &b.SkippedRows, &b.TotalPoints, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
