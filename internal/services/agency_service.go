package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"loyalty-backend/internal/auth"
	"loyalty-backend/internal/cache"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/pkg/cnpj"
)

var (
	// ErrNoPointsBalance: an agency cannot be activated while its ledger
	// balance is zero or negative. The gate applies at activation time
	// only; a later balance drop does not deactivate the agency.
	ErrNoPointsBalance = errors.New("agency has no points balance")

	ErrInvalidCredentials = errors.New("invalid cnpj or password")
	ErrCNPJTaken          = errors.New("cnpj already registered")
)

type AgencyService struct {
	pool     *pgxpool.Pool
	agencies *repositories.AgencyRepository
	ledger   *repositories.LedgerRepository
}

func NewAgencyService(pool *pgxpool.Pool, agencies *repositories.AgencyRepository, ledger *repositories.LedgerRepository) *AgencyService {
	return &AgencyService{pool: pool, agencies: agencies, ledger: ledger}
}

// Register creates an inactive agency. Activation happens separately,
// once imported points give it a positive balance.
func (s *AgencyService) Register(ctx context.Context, req *models.CreateAgencyRequest) (*models.Agency, error) {
	normalized, err := cnpj.Normalize(req.CNPJ)
	if err != nil {
		return nil, err
	}

	if _, err := s.agencies.GetByCNPJ(ctx, s.pool, normalized); err == nil {
		return nil, ErrCNPJTaken
	} else if !errors.Is(err, repositories.ErrAgencyNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	agency := &models.Agency{
		CNPJ:          normalized,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Branch:        req.Branch,
		ExecutiveName: req.ExecutiveName,
		Active:        false,
		PasswordHash:  hash,
	}
	if err := s.agencies.Create(ctx, s.pool, agency); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"component": "agency",
		"cnpj":      agency.CNPJ,
	}).Info("agency registered")
	return agency, nil
}

// Login authenticates by CNPJ and password. Verified credentials are
// cached in Redis to skip bcrypt on repeat logins.
func (s *AgencyService) Login(ctx context.Context, req *models.AgencyLoginRequest) (*models.Agency, error) {
	normalized, err := cnpj.Normalize(req.CNPJ)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	agency, err := s.agencies.GetByCNPJ(ctx, s.pool, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrAgencyNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if id, ok := cache.GetCachedAuth(ctx, normalized, req.Password); ok && id == agency.ID {
		return agency, nil
	}

	if !auth.VerifyPassword(agency.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	cache.CacheAuth(ctx, normalized, req.Password, agency.ID)

	return agency, nil
}

// Get returns an agency with its derived balance
func (s *AgencyService) Get(ctx context.Context, id int64) (*models.AgencyWithBalance, error) {
	agency, err := s.agencies.Get(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.GetBalance(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return &models.AgencyWithBalance{Agency: *agency, Balance: balance}, nil
}

// List returns agencies with balances for the back office
func (s *AgencyService) List(ctx context.Context, limit, offset int) ([]models.AgencyWithBalance, error) {
	return s.agencies.List(ctx, limit, offset)
}

// Update edits profile fields
func (s *AgencyService) Update(ctx context.Context, id int64, req *models.UpdateAgencyRequest) error {
	return s.agencies.Update(ctx, id, req)
}

// SetActive flips the activation flag. Activating requires a positive
// ledger balance, checked and applied in one transaction so a
// concurrent debit cannot slip between check and update.
func (s *AgencyService) SetActive(ctx context.Context, id int64, active bool) error {
	if !active {
		return s.agencies.SetActive(ctx, s.pool, id, false)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.agencies.LockForCheckout(ctx, tx, id); err != nil {
		return err
	}

	balance, err := s.ledger.GetBalance(ctx, tx, id)
	if err != nil {
		return err
	}
	if balance <= 0 {
		return ErrNoPointsBalance
	}

	if err := s.agencies.SetActive(ctx, tx, id, true); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
