package handlers

import (
	"net/http"

	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

type ImportHandler struct {
	Service *services.ImportService
}

func NewImportHandler(s *services.ImportService) *ImportHandler {
	return &ImportHandler{Service: s}
}

// Run credits a parsed import batch and reports unmatched rows
func (h *ImportHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())

	report, err := h.Service.Run(r.Context(), userID, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, report)
}

// ListBatches returns past import batches, newest first
func (h *ImportHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	batches, err := h.Service.ListBatches(r.Context(), limit, offset)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, batches)
}
