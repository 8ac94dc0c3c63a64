package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"loyalty-backend/internal/feed"
	"loyalty-backend/internal/metrics"
	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

type LedgerHandler struct {
	Ledger     *repositories.LedgerRepository
	Statements *services.StatementService
	Feed       *feed.Hub
}

func NewLedgerHandler(ledger *repositories.LedgerRepository, statements *services.StatementService, feedHub *feed.Hub) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger, Statements: statements, Feed: feedHub}
}

// MyEntries returns the logged-in agency's ledger entries
func (h *LedgerHandler) MyEntries(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())
	limit, offset := pagination(r)

	entries, err := h.Ledger.GetByAgency(r.Context(), agencyID, limit, offset)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

// MyBalance returns the logged-in agency's current balance
func (h *LedgerHandler) MyBalance(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	balance, err := h.Ledger.GetBalance(r.Context(), h.Ledger.DB, agencyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// MyStatement downloads the agency's points statement as PDF
func (h *LedgerHandler) MyStatement(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	data, err := h.Statements.GetStatementData(r.Context(), agencyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	pdf, err := h.Statements.GeneratePDF(data)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
	w.Write(pdf)
}

// ListEntries returns ledger entries with optional filters (back office)
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := &models.LedgerFilter{
		SourceType: models.LedgerSourceType(r.URL.Query().Get("source_type")),
	}
	filter.AgencyID, _ = strconv.ParseInt(r.URL.Query().Get("agency_id"), 10, 64)
	filter.Limit, filter.Offset = pagination(r)

	if v := r.URL.Query().Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}

	entries, err := h.Ledger.GetAll(r.Context(), filter)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

// Balances returns per-agency ledger summaries (back office)
func (h *LedgerHandler) Balances(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Ledger.GetAllBalances(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summaries)
}

// Totals returns points moved per source type (back office)
func (h *LedgerHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Ledger.GetTotalsBySource(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, totals)
}

// ExportBalancesCSV downloads every agency's summary as CSV
func (h *LedgerHandler) ExportBalancesCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Statements.GenerateBalancesCSV(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="balances.csv"`)
	w.Write(data)
}

type adjustRequest struct {
	AgencyID    int64  `json:"agency_id" validate:"required"`
	Points      int64  `json:"points" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Adjust appends a manual ADJUSTMENT entry. Positive points credit,
// negative points debit; zero is rejected by validation.
func (h *LedgerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	sourceID := fmt.Sprintf("admin:%d", userID)

	var entry *models.LedgerEntry
	var err error
	if req.Points > 0 {
		entry, err = h.Ledger.Credit(r.Context(), h.Ledger.DB, req.AgencyID,
			models.LedgerSourceAdjustment, sourceID, req.Points, req.Description)
		if err == nil {
			metrics.PointsCreditedTotal.Add(float64(req.Points))
		}
	} else {
		entry, err = h.Ledger.Debit(r.Context(), h.Ledger.DB, req.AgencyID,
			models.LedgerSourceAdjustment, sourceID, req.Points, req.Description)
		if err == nil {
			metrics.PointsDebitedTotal.Add(float64(-req.Points))
		}
	}
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	h.Feed.Publish(entry)
	utils.JSON(w, http.StatusCreated, entry)
}

// Stream upgrades to a websocket feed of new ledger entries
func (h *LedgerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.Feed.ServeWS(w, r)
}
