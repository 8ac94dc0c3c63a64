package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/cnpj"
)

// JSON writes a JSON response with the given status
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error body
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps service and repository sentinel errors to HTTP
// statuses. Business rejections (balance, allocation, stock) are 422:
// the request was well-formed, the domain said no.
func ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatusChange),
		errors.Is(err, services.ErrEmptyImport),
		errors.Is(err, cnpj.ErrInvalid):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrNoPointsBalance):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrCNPJTaken):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidTOTPCode):
		Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repositories.ErrAgencyNotFound),
		errors.Is(err, repositories.ErrProductNotFound),
		errors.Is(err, repositories.ErrOrderNotFound),
		errors.Is(err, repositories.ErrBannerNotFound),
		errors.Is(err, repositories.ErrCategoryNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		Error(w, http.StatusNotFound, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
