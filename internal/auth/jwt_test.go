package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/internal/config"
	"loyalty-backend/internal/models"
)

func testManager() *JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "test"
	return NewJWTManager(cfg)
}

func TestUserTokenRoundTrip(t *testing.T) {
	j := testManager()
	user := &models.User{ID: 42, Email: "ops@example.com", Role: "admin", IsActive: true}

	token, err := j.GenerateToken(user)
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestAgencyTokenRoundTrip(t *testing.T) {
	j := testManager()
	agency := &models.Agency{ID: 7, CNPJ: "12345678000195"}

	token, err := j.GenerateAgencyToken(agency)
	require.NoError(t, err)

	claims, err := j.ValidateAgencyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AgencyID)
	assert.Equal(t, "12345678000195", claims.CNPJ)
}

func TestAgencyTokenRejectsUserToken(t *testing.T) {
	j := testManager()
	token, err := j.GenerateToken(&models.User{ID: 1, Email: "ops@example.com"})
	require.NoError(t, err)

	// A back-office token has no agency_id; it must not pass as a
	// storefront token.
	_, err = j.ValidateAgencyToken(token)
	assert.Error(t, err)
}

func TestTempTokenRoundTrip(t *testing.T) {
	j := testManager()
	user := &models.User{ID: 5, Email: "ops@example.com"}

	token, err := j.GenerateTempToken(user)
	require.NoError(t, err)

	claims, err := j.ValidateTempToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "2fa_pending", claims.Type)
}

func TestTempTokenRejectsFullToken(t *testing.T) {
	j := testManager()
	token, err := j.GenerateToken(&models.User{ID: 5, Email: "ops@example.com"})
	require.NoError(t, err)

	_, err = j.ValidateTempToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	j := testManager()
	token, err := j.GenerateToken(&models.User{ID: 1, Email: "ops@example.com"})
	require.NoError(t, err)

	other := &config.Config{}
	other.JWT.Secret = "different-secret"
	other.JWT.ExpirationHours = 1
	_, err = NewJWTManager(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong password"))
}
