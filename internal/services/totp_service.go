package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
)

const totpIssuer = "LoyaltyAdmin"

var (
	ErrNoTOTPSecret    = errors.New("2fa setup not initiated")
	ErrInvalidTOTPCode = errors.New("invalid verification code")
	ErrTOTPNotEnabled  = errors.New("2fa is not enabled")
)

// TOTPService handles 2FA enrollment and login verification for
// back-office users.
type TOTPService struct {
	users *repositories.UserRepository
}

func NewTOTPService(users *repositories.UserRepository) *TOTPService {
	return &TOTPService{users: users}
}

// GenerateSetup creates a new TOTP secret and QR code for a user. The
// secret is stored immediately but 2FA stays off until the first code
// verifies.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      totpIssuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable verifies the first code and switches 2FA on
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int64, code string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.users.EnableTOTP(ctx, userID)
}

// Verify validates a TOTP code during the second login step
func (s *TOTPService) Verify(ctx context.Context, userID int64, code string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return ErrTOTPNotEnabled
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return nil
}
