package handlers

import (
	"net/http"

	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

type TOTPHandler struct {
	Service *services.TOTPService
	Users   *repositories.UserRepository
}

func NewTOTPHandler(s *services.TOTPService, users *repositories.UserRepository) *TOTPHandler {
	return &TOTPHandler{Service: s, Users: users}
}

// Setup starts 2FA enrollment for the logged-in back-office user
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	setup, err := h.Service.GenerateSetup(r.Context(), user)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, setup)
}

// VerifyEnable confirms the first code and turns 2FA on
func (h *TOTPHandler) VerifyEnable(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.TOTPVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Service.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": true})
}
