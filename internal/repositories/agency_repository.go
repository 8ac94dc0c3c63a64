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

var ErrAgencyNotFound = errors.New("agency not found")

type AgencyRepository struct {
	DB *pgxpool.Pool
}

func NewAgencyRepository(db *pgxpool.Pool) *AgencyRepository {
	return &AgencyRepository{DB: db}
}

const agencyColumns = `id, cnpj, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(branch, ''), COALESCE(executive_name, ''), active, password_hash,
	created_at, updated_at`

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var a models.Agency
	err := row.Scan(&a.ID, &a.CNPJ, &a.Name, &a.Email, &a.Phone,
		&a.Branch, &a.ExecutiveName, &a.Active, &a.PasswordHash,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts an agency. cnpj must already be normalized; q lets
// registration share a transaction with initial ledger credits.
func (r *AgencyRepository) Create(ctx context.Context, q db.Queryer, agency *models.Agency) error {
	err := q.QueryRow(ctx,
		`INSERT INTO agencies (cnpj, name, email, phone, branch, executive_name, active, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		agency.CNPJ, agency.Name, agency.Email, agency.Phone,
		agency.Branch, agency.ExecutiveName, agency.Active, agency.PasswordHash,
	).Scan(&agency.ID, &agency.CreatedAt, &agency.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create agency: %w", err)
	}
	return nil
}

func (r *AgencyRepository) Get(ctx context.Context, q db.Queryer, id int64) (*models.Agency, error) {
	return scanAgency(q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM agencies WHERE id = $1`, agencyColumns), id))
}

// GetByCNPJ looks up an agency by its normalized CNPJ
func (r *AgencyRepository) GetByCNPJ(ctx context.Context, q db.Queryer, cnpj string) (*models.Agency, error) {
	return scanAgency(q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM agencies WHERE cnpj = $1`, agencyColumns), cnpj))
}

// LockForCheckout re-reads the agency row FOR UPDATE inside tx. This
// is the serialization point for balance-check-then-debit: a second
// checkout for the same agency blocks here until the first commits.
func (r *AgencyRepository) LockForCheckout(ctx context.Context, tx pgx.Tx, id int64) (*models.Agency, error) {
	return scanAgency(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM agencies WHERE id = $1 FOR UPDATE`, agencyColumns), id))
}

// List returns agencies with their derived balances (admin view)
func (r *AgencyRepository) List(ctx context.Context, limit, offset int) ([]models.AgencyWithBalance, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.Query(ctx,
		`SELECT a.id, a.cnpj, a.name, COALESCE(a.email, ''), COALESCE(a.phone, ''),
		        COALESCE(a.branch, ''), COALESCE(a.executive_name, ''), a.active,
		        a.created_at, a.updated_at,
		        COALESCE((SELECT SUM(points) FROM ledger_entries l WHERE l.agency_id = a.id), 0) as balance
		 FROM agencies a
		 ORDER BY a.name
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []models.AgencyWithBalance
	for rows.Next() {
		var a models.AgencyWithBalance
		if err := rows.Scan(&a.ID, &a.CNPJ, &a.Name, &a.Email, &a.Phone,
			&a.Branch, &a.ExecutiveName, &a.Active,
			&a.CreatedAt, &a.UpdatedAt, &a.Balance); err != nil {
			return nil, err
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

// Update edits profile fields
func (r *AgencyRepository) Update(ctx context.Context, id int64, req *models.UpdateAgencyRequest) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE agencies
		 SET name = COALESCE(NULLIF($2, ''), name),
		     email = COALESCE(NULLIF($3, ''), email),
		     phone = COALESCE(NULLIF($4, ''), phone),
		     branch = COALESCE(NULLIF($5, ''), branch),
		     executive_name = COALESCE(NULLIF($6, ''), executive_name),
		     updated_at = NOW()
		 WHERE id = $1`,
		id, req.Name, req.Email, req.Phone, req.Branch, req.ExecutiveName,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAgencyNotFound
	}
	return nil
}

// SetActive flips the activation gate. The balance check lives in the
// service; q lets the service keep check and update in one transaction.
func (r *AgencyRepository) SetActive(ctx context.Context, q db.Queryer, id int64, active bool) error {
	tag, err := q.Exec(ctx,
		`UPDATE agencies SET active = $2, updated_at = NOW() WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAgencyNotFound
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash
func (r *AgencyRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE agencies SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAgencyNotFound
	}
	return nil
}
