package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, email, role, is_active, totp_enabled,
	COALESCE(totp_secret, ''), password_hash, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive,
		&u.TOTPEnabled, &u.TOTPSecret, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO users (name, email, role, is_active, password_hash)
		 VALUES ($1, $2, $3, true, $4)
		 RETURNING id, created_at`,
		user.Name, user.Email, user.Role, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// SetTOTPSecret stores a provisioning secret (2FA not yet enabled)
func (r *UserRepository) SetTOTPSecret(ctx context.Context, id int64, secret string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret = $2 WHERE id = $1`, id, secret)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EnableTOTP flips 2FA on after the first code verifies
func (r *UserRepository) EnableTOTP(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_enabled = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
