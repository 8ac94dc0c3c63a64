package models

import "time"

// LedgerSourceType identifies what justified a ledger entry
type LedgerSourceType string

const (
	LedgerSourceImport     LedgerSourceType = "IMPORT"     // Points credited from a sales import line
	LedgerSourceOrder      LedgerSourceType = "ORDER"      // Points debited by a confirmed order
	LedgerSourceAdjustment LedgerSourceType = "ADJUSTMENT" // Manual correction by an admin
)

// LedgerEntry is a single signed point delta for an agency.
//
// Entries are append-only: never updated, never deleted. The agency
// balance is always COALESCE(SUM(points), 0) over its entries; no
// stored counter exists anywhere else.
type LedgerEntry struct {
	ID          int64            `json:"id"`
	AgencyID    int64            `json:"agency_id"`
	SourceType  LedgerSourceType `json:"source_type"`
	SourceID    string           `json:"source_id"`
	Points      int64            `json:"points"` // signed delta
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
}

// LedgerSummary aggregates an agency's ledger for admin listings
type LedgerSummary struct {
	AgencyID      int64  `json:"agency_id"`
	AgencyName    string `json:"agency_name"`
	TotalCredited int64  `json:"total_credited"`
	TotalDebited  int64  `json:"total_debited"`
	Balance       int64  `json:"balance"`
	EntryCount    int    `json:"entry_count"`
}

// LedgerFilter narrows admin ledger listings
type LedgerFilter struct {
	AgencyID   int64            `json:"agency_id"`
	SourceType LedgerSourceType `json:"source_type"`
	StartDate  *time.Time       `json:"start_date"`
	EndDate    *time.Time       `json:"end_date"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}
