package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/db"
	"loyalty-backend/internal/models"
)

// LedgerRepository is the only writer of ledger_entries. The table is
// append-only: no Update or Delete statement exists anywhere in this
// package, and balances are always recomputed from SUM(points).
type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// Credit appends a positive entry. q is the caller's transaction when
// the credit must be atomic with the operation that justifies it
// (import batch, manual adjustment).
func (r *LedgerRepository) Credit(ctx context.Context, q db.Queryer, agencyID int64, sourceType models.LedgerSourceType, sourceID string, points int64, description string) (*models.LedgerEntry, error) {
	if points <= 0 {
		return nil, fmt.Errorf("credit points must be positive, got %d", points)
	}
	return r.append(ctx, q, agencyID, sourceType, sourceID, points, description)
}

// Debit appends a negative entry storing -abs(points). It must only be
// called inside the transaction of the operation that consumes the
// points (order confirmation); a standalone debit would leave the
// ledger claiming a consumption no order can explain.
func (r *LedgerRepository) Debit(ctx context.Context, q db.Queryer, agencyID int64, sourceType models.LedgerSourceType, sourceID string, points int64, description string) (*models.LedgerEntry, error) {
	if points < 0 {
		points = -points
	}
	if points == 0 {
		return nil, fmt.Errorf("debit points must be non-zero")
	}
	return r.append(ctx, q, agencyID, sourceType, sourceID, -points, description)
}

func (r *LedgerRepository) append(ctx context.Context, q db.Queryer, agencyID int64, sourceType models.LedgerSourceType, sourceID string, points int64, description string) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		AgencyID:    agencyID,
		SourceType:  sourceType,
		SourceID:    sourceID,
		Points:      points,
		Description: description,
	}

	err := q.QueryRow(ctx,
		`INSERT INTO ledger_entries (agency_id, source_type, source_id, points, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		agencyID, sourceType, sourceID, points, description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return entry, nil
}

// GetBalance returns the current balance for an agency. Always a fresh
// SUM over the ledger; pass the checkout transaction as q so the read
// happens under its row lock.
func (r *LedgerRepository) GetBalance(ctx context.Context, q db.Queryer, agencyID int64) (int64, error) {
	var balance int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM ledger_entries WHERE agency_id = $1`,
		agencyID,
	).Scan(&balance)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// GetByAgency returns an agency's entries, newest first
func (r *LedgerRepository) GetByAgency(ctx context.Context, agencyID int64, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, agency_id, source_type, source_id, points, COALESCE(description, ''), created_at
		 FROM ledger_entries
		 WHERE agency_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		agencyID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AgencyID, &e.SourceType, &e.SourceID, &e.Points, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetAll returns ledger entries with optional filters (for audit)
func (r *LedgerRepository) GetAll(ctx context.Context, filter *models.LedgerFilter) ([]models.LedgerEntry, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.AgencyID != 0 {
		conditions = append(conditions, fmt.Sprintf("agency_id = $%d", argNum))
		args = append(args, filter.AgencyID)
		argNum++
	}
	if filter.SourceType != "" {
		conditions = append(conditions, fmt.Sprintf("source_type = $%d", argNum))
		args = append(args, filter.SourceType)
		argNum++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	query := fmt.Sprintf(
		`SELECT id, agency_id, source_type, source_id, points, COALESCE(description, ''), created_at
		 FROM ledger_entries
		 %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`,
		whereClause, argNum, argNum+1)

	args = append(args, limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AgencyID, &e.SourceType, &e.SourceID, &e.Points, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetAllBalances returns per-agency ledger summaries, highest balance first
func (r *LedgerRepository) GetAllBalances(ctx context.Context) ([]models.LedgerSummary, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT l.agency_id,
		        MAX(a.name) as agency_name,
		        COALESCE(SUM(CASE WHEN l.points > 0 THEN l.points ELSE 0 END), 0) as total_credited,
		        COALESCE(SUM(CASE WHEN l.points < 0 THEN -l.points ELSE 0 END), 0) as total_debited,
		        COALESCE(SUM(l.points), 0) as balance,
		        COUNT(*) as entry_count
		 FROM ledger_entries l
		 JOIN agencies a ON a.id = l.agency_id
		 GROUP BY l.agency_id
		 ORDER BY balance DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.LedgerSummary
	for rows.Next() {
		var s models.LedgerSummary
		if err := rows.Scan(&s.AgencyID, &s.AgencyName, &s.TotalCredited, &s.TotalDebited, &s.Balance, &s.EntryCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetTotalsBySource returns the absolute points moved per source type
func (r *LedgerRepository) GetTotalsBySource(ctx context.Context) (map[models.LedgerSourceType]int64, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT source_type, COALESCE(SUM(ABS(points)), 0)
		 FROM ledger_entries
		 GROUP BY source_type`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[models.LedgerSourceType]int64)
	for rows.Next() {
		var sourceType models.LedgerSourceType
		var total int64
		if err := rows.Scan(&sourceType, &total); err != nil {
			return nil, err
		}
		totals[sourceType] = total
	}
	return totals, rows.Err()
}
