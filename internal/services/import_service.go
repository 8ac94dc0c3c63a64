package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"loyalty-backend/internal/feed"
	"loyalty-backend/internal/metrics"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/pkg/cnpj"
)

var ErrEmptyImport = errors.New("import batch has no items")

// ImportService credits imported sales to agency ledgers. One batch is
// one transaction: either every matchable row is credited and the batch
// recorded, or nothing is. Rows whose CNPJ matches no agency are
// skipped, counted, and reported back rather than failing the batch.
type ImportService struct {
	pool     *pgxpool.Pool
	agencies *repositories.AgencyRepository
	ledger   *repositories.LedgerRepository
	imports  *repositories.ImportRepository
	feed     *feed.Hub
}

func NewImportService(
	pool *pgxpool.Pool,
	agencies *repositories.AgencyRepository,
	ledger *repositories.LedgerRepository,
	imports *repositories.ImportRepository,
	feedHub *feed.Hub,
) *ImportService {
	return &ImportService{
		pool:     pool,
		agencies: agencies,
		ledger:   ledger,
		imports:  imports,
		feed:     feedHub,
	}
}

// Run credits a parsed batch. createdBy is the admin user submitting it.
func (s *ImportService) Run(ctx context.Context, createdBy int64, req *models.ImportRequest) (*models.ImportReport, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyImport
	}

	batchID := uuid.NewString()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		credited  []*models.LedgerEntry
		unmatched []string
		total     int64
	)

	for row, item := range req.Items {
		if item.Points <= 0 {
			return nil, fmt.Errorf("%w: row %d has %d points", ErrInvalidQuantity, row+1, item.Points)
		}

		normalized, err := cnpj.Normalize(item.CNPJ)
		if err != nil {
			unmatched = append(unmatched, item.CNPJ)
			continue
		}

		agency, err := s.agencies.GetByCNPJ(ctx, tx, normalized)
		if err != nil {
			if errors.Is(err, repositories.ErrAgencyNotFound) {
				unmatched = append(unmatched, item.CNPJ)
				continue
			}
			return nil, err
		}

		// source_id ties the entry to its exact batch row for audit
		entry, err := s.ledger.Credit(ctx, tx, agency.ID, models.LedgerSourceImport,
			fmt.Sprintf("%s#%d", batchID, row+1), item.Points, item.Description)
		if err != nil {
			return nil, err
		}
		credited = append(credited, entry)
		total += item.Points
	}

	batch := &models.ImportBatch{
		ID:           batchID,
		FileName:     req.FileName,
		ItemCount:    len(req.Items),
		CreditedRows: len(credited),
		SkippedRows:  len(unmatched),
		TotalPoints:  total,
		CreatedBy:    createdBy,
	}
	if err := s.imports.CreateBatch(ctx, tx, batch); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PointsCreditedTotal.Add(float64(total))
	for _, entry := range credited {
		s.feed.Publish(entry)
	}

	log.WithFields(log.Fields{
		"component": "import",
		"batch":     batchID,
		"credited":  len(credited),
		"skipped":   len(unmatched),
		"points":    total,
	}).Info("import batch credited")

	return &models.ImportReport{Batch: *batch, Unmatched: unmatched}, nil
}

// ListBatches returns past batches for the back office
func (s *ImportService) ListBatches(ctx context.Context, limit, offset int) ([]models.ImportBatch, error) {
	return s.imports.ListBatches(ctx, limit, offset)
}
