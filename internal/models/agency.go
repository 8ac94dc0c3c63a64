package models

import "time"

// Agency is a B2B customer that accrues points from imported sales and
// redeems them in the catalog. Balance is derived from the ledger and
// is intentionally absent from this struct's persisted columns.
type Agency struct {
	ID            int64     `json:"id"`
	CNPJ          string    `json:"cnpj"` // digits only, 11 or 14
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Branch        string    `json:"branch"`
	ExecutiveName string    `json:"executive_name"`
	Active        bool      `json:"active"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AgencyWithBalance decorates an agency with its current ledger balance
// for listings. The balance is computed at read time, never stored.
type AgencyWithBalance struct {
	Agency
	Balance int64 `json:"balance"`
}

// CreateAgencyRequest registers a new agency
type CreateAgencyRequest struct {
	CNPJ          string `json:"cnpj" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	Branch        string `json:"branch"`
	ExecutiveName string `json:"executive_name"`
	Password      string `json:"password" validate:"required,min=8"`
}

// UpdateAgencyRequest edits agency profile fields
type UpdateAgencyRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Branch        string `json:"branch"`
	ExecutiveName string `json:"executive_name"`
}

// AgencyLoginRequest authenticates an agency by CNPJ + password
type AgencyLoginRequest struct {
	CNPJ     string `json:"cnpj" validate:"required"`
	Password string `json:"password" validate:"required"`
}
