package models

import "time"

// ImportBatch records one bulk point import. Parsing the uploaded
// spreadsheet happens upstream; the batch arrives here as rows already
// reduced to (cnpj, points, description).
type ImportBatch struct {
	ID           string    `json:"id"` // uuid
	FileName     string    `json:"file_name"`
	ItemCount    int       `json:"item_count"`
	CreditedRows int       `json:"credited_rows"`
	SkippedRows  int       `json:"skipped_rows"`
	TotalPoints  int64     `json:"total_points"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImportItem is one attributable line of an import batch
type ImportItem struct {
	CNPJ        string `json:"cnpj" validate:"required"`
	Points      int64  `json:"points" validate:"required,gt=0"`
	Description string `json:"description"`
}

// ImportRequest submits a parsed batch for crediting
type ImportRequest struct {
	FileName string       `json:"file_name"`
	Items    []ImportItem `json:"items" validate:"required,min=1,dive"`
}

// ImportReport summarizes what a batch credited and which rows could
// not be matched to an agency CNPJ.
type ImportReport struct {
	Batch     ImportBatch `json:"batch"`
	Unmatched []string    `json:"unmatched_cnpjs,omitempty"`
}
