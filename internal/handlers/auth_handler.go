package handlers

import (
	"net/http"

	"loyalty-backend/internal/auth"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

// AuthResponse is returned on a completed back-office login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// TwoFactorPendingResponse is returned after a correct password when
// the account has 2FA enabled; the client must exchange the temp token
// plus a TOTP code for a real one.
type TwoFactorPendingResponse struct {
	Requires2FA bool   `json:"requires_2fa"`
	TempToken   string `json:"temp_token"`
}

type AuthHandler struct {
	Users *repositories.UserRepository
	JWT   *auth.JWTManager
	TOTP  *services.TOTPService
}

func NewAuthHandler(users *repositories.UserRepository, jwt *auth.JWTManager, totp *services.TOTPService) *AuthHandler {
	return &AuthHandler{Users: users, JWT: jwt, TOTP: totp}
}

// Signup registers a back-office user
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = "operator"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := h.Users.Create(r.Context(), user); err != nil {
		utils.ServiceError(w, err)
		return
	}

	token, err := h.JWT.GenerateToken(user)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login is the first authentication step. Accounts with 2FA enabled get
// a short-lived temp token instead of a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		utils.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !user.IsActive {
		utils.Error(w, http.StatusForbidden, "account suspended")
		return
	}

	if user.TOTPEnabled {
		tempToken, err := h.JWT.GenerateTempToken(user)
		if err != nil {
			utils.ServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, TwoFactorPendingResponse{Requires2FA: true, TempToken: tempToken})
		return
	}

	token, err := h.JWT.GenerateToken(user)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

type verify2FARequest struct {
	TempToken string `json:"temp_token" validate:"required"`
	Code      string `json:"code" validate:"required,len=6"`
}

// Verify2FA is the second login step for 2FA accounts
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req verify2FARequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.JWT.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "invalid or expired temp token")
		return
	}

	if err := h.TOTP.Verify(r.Context(), claims.UserID, req.Code); err != nil {
		utils.ServiceError(w, err)
		return
	}

	user, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	token, err := h.JWT.GenerateToken(user)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}
