package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/cnpj"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int64{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body["id"])
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidQuantity, http.StatusBadRequest},
		{services.ErrInvalidStatusChange, http.StatusBadRequest},
		{services.ErrEmptyImport, http.StatusBadRequest},
		{cnpj.ErrInvalid, http.StatusBadRequest},
		{services.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{services.ErrProductUnavailable, http.StatusUnprocessableEntity},
		{services.ErrOutOfStock, http.StatusUnprocessableEntity},
		{services.ErrNoPointsBalance, http.StatusUnprocessableEntity},
		{services.ErrCNPJTaken, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidTOTPCode, http.StatusUnauthorized},
		{repositories.ErrAgencyNotFound, http.StatusNotFound},
		{repositories.ErrProductNotFound, http.StatusNotFound},
		{repositories.ErrOrderNotFound, http.StatusNotFound},
		{repositories.ErrUserNotFound, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			ServiceError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}

func TestServiceError_WrappedError(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceError(rec, fmt.Errorf("product 12: %w", services.ErrOutOfStock))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
