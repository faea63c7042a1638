package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/models"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	verifyCodeTTL   = 15 * time.Minute
)

// Mailer sends account emails. Satisfied by email.Service; tests plug in
// a recorder.
type Mailer interface {
	SendVerificationCode(to, code string, purpose models.VerificationType) error
}

// Service handles registration, login, token and password flows
type Service struct {
	db        *gorm.DB
	jwtSecret []byte
	mailer    Mailer
}

// NewService creates an authentication service. mailer may be nil, in
// which case verification emails are skipped (useful in tests).
func NewService(db *gorm.DB, jwtSecret []byte, mailer Mailer) *Service {
	return &Service{db: db, jwtSecret: jwtSecret, mailer: mailer}
}

// Register creates an inactive account and emails a confirmation code
func (s *Service) Register(req dto.RegisterRequest) (*models.Account, error) {
	var existing models.Account
	err := s.db.Where("LOWER(email) = LOWER(?) AND deleted_at IS NULL", req.Email).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation(apperr.MsgUsernameExists, map[string]string{"email": "EmailExists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = s.db.Where("LOWER(username) = LOWER(?) AND deleted_at IS NULL", req.Username).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation(apperr.MsgUsernameExists, map[string]string{"username": "UsernameExists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code := numericCode(6)
	expiry := time.Now().UTC().Add(verifyCodeTTL)
	account := models.Account{
		Username:         req.Username,
		Email:            strings.ToLower(req.Email),
		Name:             req.Name,
		PasswordHash:     string(hashed),
		Status:           models.StatusInactive,
		VerifyCode:       code,
		VerifyCodeExpiry: &expiry,
		VerifyType:       models.VerifyRegister,
	}
	if err := s.db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(account.Email, code, models.VerifyRegister); err != nil {
			// registration stands; the code can be re-sent
			fmt.Printf("Warning: failed to send verification email: %v\n", err)
		}
	}

	return &account, nil
}

// ConfirmRegister activates an account with the emailed code and logs it in
func (s *Service) ConfirmRegister(email, code string) (*models.Account, *dto.TokenResponse, error) {
	account, err := s.accountByEmail(email)
	if err != nil {
		return nil, nil, err
	}

	if err := s.checkVerifyCode(account, code, models.VerifyRegister); err != nil {
		return nil, nil, err
	}

	account.Status = models.StatusActive
	s.clearVerifyCode(account)

	tokens, err := s.issueTokens(account)
	if err != nil {
		return nil, nil, err
	}
	if err := s.db.Save(account).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to activate account: %w", err)
	}
	return account, tokens, nil
}

// Login authenticates with username (or email) and password. A pending
// self-removal is cancelled by a successful login.
func (s *Service) Login(username, password string) (*models.Account, *dto.TokenResponse, error) {
	var account models.Account
	err := s.db.Where(
		"(LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)) AND deleted_at IS NULL",
		username, username,
	).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.Unauthorized(apperr.MsgNoAccount)
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.Unauthorized(apperr.MsgNoAccount)
	}

	if account.Status == models.StatusInactive {
		return nil, nil, apperr.Forbidden()
	}

	account.SelfRemoveTime = nil

	tokens, err := s.issueTokens(&account)
	if err != nil {
		return nil, nil, err
	}
	if err := s.db.Save(&account).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &account, tokens, nil
}

// Refresh rotates the token pair for a valid, unexpired refresh token
func (s *Service) Refresh(refreshToken string) (*dto.TokenResponse, error) {
	var account models.Account
	err := s.db.Where("refresh_token = ? AND deleted_at IS NULL", refreshToken).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if account.RefreshTokenExpiry == nil || account.RefreshTokenExpiry.Before(time.Now().UTC()) {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	tokens, err := s.issueTokens(&account)
	if err != nil {
		return nil, err
	}
	if err := s.db.Save(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return tokens, nil
}

// Logout invalidates the stored token pair
func (s *Service) Logout(accountID string) error {
	return s.db.Model(&models.Account{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"access_token":         "",
		"refresh_token":        "",
		"refresh_token_expiry": nil,
	}).Error
}

// ForgotPassword stores a recovery code and emails it. Whether the email
// exists is never revealed to the caller.
func (s *Service) ForgotPassword(email string) error {
	account, err := s.accountByEmail(email)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Status == 404 {
			return nil
		}
		return err
	}

	code := numericCode(6)
	expiry := time.Now().UTC().Add(verifyCodeTTL)
	account.VerifyCode = code
	account.VerifyCodeExpiry = &expiry
	account.VerifyType = models.VerifyForgotPassword
	if err := s.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to store verify code: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(account.Email, code, models.VerifyForgotPassword); err != nil {
			fmt.Printf("Warning: failed to send recovery email: %v\n", err)
		}
	}
	return nil
}

// ConfirmForgotPassword exchanges the emailed code for an opaque reset
// token usable once by ResetPassword
func (s *Service) ConfirmForgotPassword(email, code string) (string, error) {
	account, err := s.accountByEmail(email)
	if err != nil {
		return "", err
	}

	if err := s.checkVerifyCode(account, code, models.VerifyForgotPassword); err != nil {
		return "", err
	}

	resetToken := randomToken()
	expiry := time.Now().UTC().Add(verifyCodeTTL)
	account.VerifyCode = resetToken
	account.VerifyCodeExpiry = &expiry
	account.VerifyType = models.VerifyChangePassword
	if err := s.db.Save(account).Error; err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return resetToken, nil
}

// ResetPassword sets a new password using the reset token and invalidates
// all existing sessions
func (s *Service) ResetPassword(email, resetToken, newPassword string) error {
	account, err := s.accountByEmail(email)
	if err != nil {
		return err
	}

	if err := s.checkVerifyCode(account, resetToken, models.VerifyChangePassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account.PasswordHash = string(hashed)
	account.AccessToken = ""
	account.RefreshToken = ""
	account.RefreshTokenExpiry = nil
	s.clearVerifyCode(account)
	if err := s.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ChangePassword updates the password for a logged-in account
func (s *Service) ChangePassword(accountID, oldPassword, newPassword string) error {
	var account models.Account
	err := s.db.Where("id = ? AND deleted_at IS NULL", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(apperr.MsgNoAccount)
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Validation(apperr.MsgUpdateAccountFailed, map[string]string{"oldPassword": "WrongPassword"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = string(hashed)
	return s.db.Save(&account).Error
}

// ValidateAccessToken parses an access token and loads its live account.
// Deleted or missing accounts fail validation even with a valid signature.
func (s *Service) ValidateAccessToken(tokenString string) (*models.Account, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}
	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	var account models.Account
	err = s.db.Where("id = ? AND deleted_at IS NULL", accountID).First(&account).Error
	if err != nil {
		return nil, apperr.Unauthorized(apperr.MsgNoAccount)
	}
	return &account, nil
}

func (s *Service) issueTokens(account *models.Account) (*dto.TokenResponse, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"account_id": account.ID,
		"username":   account.Username,
		"exp":        now.Add(accessTokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refreshToken := randomToken()
	refreshExpiry := now.Add(refreshTokenTTL)
	account.AccessToken = accessToken
	account.RefreshToken = refreshToken
	account.RefreshTokenExpiry = &refreshExpiry

	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) accountByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("LOWER(email) = LOWER(?) AND deleted_at IS NULL", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.MsgNoAccount)
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &account, nil
}

func (s *Service) checkVerifyCode(account *models.Account, code string, verifyType models.VerificationType) error {
	if account.VerifyCode == "" || account.VerifyCode != code || account.VerifyType != verifyType {
		return apperr.BadRequest(apperr.MsgInvalidToken)
	}
	if account.VerifyCodeExpiry == nil || account.VerifyCodeExpiry.Before(time.Now().UTC()) {
		return apperr.BadRequest(apperr.MsgInvalidToken)
	}
	return nil
}

func (s *Service) clearVerifyCode(account *models.Account) {
	account.VerifyCode = ""
	account.VerifyCodeExpiry = nil
	account.VerifyType = ""
}

// randomToken returns an opaque token for refresh/reset use
func randomToken() string {
	return uuid.New().String() + uuid.New().String()
}

// numericCode returns an n-digit verification code
func numericCode(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}
