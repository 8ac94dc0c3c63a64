package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/timeutil"
	"loyalty-backend/pkg/cnpj"
)

// StatementData holds everything one agency statement renders
type StatementData struct {
	Agency        *models.Agency
	Entries       []models.LedgerEntry
	TotalCredited int64
	TotalDebited  int64
	Balance       int64
}

// StatementService renders agency points statements as PDF and admin
// balance exports as CSV.
type StatementService struct {
	agencies *repositories.AgencyRepository
	ledger   *repositories.LedgerRepository
}

func NewStatementService(agencies *repositories.AgencyRepository, ledger *repositories.LedgerRepository) *StatementService {
	return &StatementService{agencies: agencies, ledger: ledger}
}

// GetStatementData fetches an agency's statement. Totals are recomputed
// from the returned entries so the PDF always adds up against itself.
func (s *StatementService) GetStatementData(ctx context.Context, agencyID int64) (*StatementData, error) {
	agency, err := s.agencies.Get(ctx, s.agencies.DB, agencyID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.GetByAgency(ctx, agencyID, 500, 0)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, s.ledger.DB, agencyID)
	if err != nil {
		return nil, err
	}

	var credited, debited int64
	for _, e := range entries {
		if e.Points > 0 {
			credited += e.Points
		} else {
			debited += -e.Points
		}
	}

	return &StatementData{
		Agency:        agency,
		Entries:       entries,
		TotalCredited: credited,
		TotalDebited:  debited,
		Balance:       balance,
	}, nil
}

// GeneratePDF renders the statement for download
func (s *StatementService) GeneratePDF(data *StatementData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Points Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DateTimeLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Agency Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Agency Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", data.Agency.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("CNPJ: %s", cnpj.Format(data.Agency.CNPJ)), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Branch: %s", data.Agency.Branch), "LB", 0, "L", false, 0, "")
	if data.Agency.ExecutiveName != "" {
		pdf.CellFormat(95, 7, fmt.Sprintf("Executive: %s", data.Agency.ExecutiveName), "RB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(95, 7, "", "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Entries
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Ledger Entries", "1", 1, "L", true, 0, "")

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(35, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Source", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Points", "1", 1, "C", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 10)
	for _, e := range data.Entries {
		pdf.CellFormat(35, 6, timeutil.FormatBRT(e.CreatedAt, timeutil.DateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(e.SourceType), "1", 0, "C", false, 0, "")
		desc := e.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}
		pdf.CellFormat(95, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%+d", e.Points), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Credited: %d", data.TotalCredited), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Redeemed: %d", data.TotalDebited), "1", 1, "C", false, 0, "")

	// Balance highlight
	if data.Balance > 0 {
		pdf.SetFillColor(200, 255, 200)
	} else {
		pdf.SetFillColor(255, 200, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Current Balance: %d points", data.Balance), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateBalancesCSV exports every agency's ledger summary for the
// back office.
func (s *StatementService) GenerateBalancesCSV(ctx context.Context) ([]byte, error) {
	summaries, err := s.ledger.GetAllBalances(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"#", "Agency", "Credited", "Redeemed", "Balance", "Entries"})
	for i, sum := range summaries {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			sum.AgencyName,
			fmt.Sprintf("%d", sum.TotalCredited),
			fmt.Sprintf("%d", sum.TotalDebited),
			fmt.Sprintf("%d", sum.Balance),
			fmt.Sprintf("%d", sum.EntryCount),
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
