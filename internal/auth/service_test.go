package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/database"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/models"
)

type recordingMailer struct {
	to      []string
	codes   []string
	purpose []models.VerificationType
}

func (m *recordingMailer) SendVerificationCode(to, code string, purpose models.VerificationType) error {
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	m.purpose = append(m.purpose, purpose)
	return nil
}

func newTestService(t *testing.T) (*Service, *recordingMailer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))
	mailer := &recordingMailer{}
	return NewService(db, []byte("test-secret"), mailer), mailer, db
}

func register(t *testing.T, svc *Service) *models.Account {
	t.Helper()
	account, err := svc.Register(dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)
	return account
}

func TestRegisterCreatesInactiveAccount(t *testing.T) {
	svc, mailer, _ := newTestService(t)

	account := register(t, svc)
	assert.Equal(t, models.StatusInactive, account.Status)
	assert.NotEmpty(t, account.VerifyCode)
	assert.Equal(t, models.VerifyRegister, account.VerifyType)

	require.Len(t, mailer.to, 1)
	assert.Equal(t, "alice@example.com", mailer.to[0])
	assert.Equal(t, account.VerifyCode, mailer.codes[0])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)

	_, err := svc.Register(dto.RegisterRequest{
		Username: "ALICE", Email: "other@example.com", Password: "password123", Name: "A",
	})
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, "UsernameExists", appErr.Fields["username"])

	_, err = svc.Register(dto.RegisterRequest{
		Username: "someone", Email: "Alice@Example.com", Password: "password123", Name: "A",
	})
	appErr, ok = err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, "EmailExists", appErr.Fields["email"])
}

func TestConfirmRegisterActivatesAndIssuesTokens(t *testing.T) {
	svc, mailer, db := newTestService(t)
	register(t, svc)

	_, _, err := svc.ConfirmRegister("alice@example.com", "wrong")
	require.Error(t, err)

	account, tokens, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, account.Status)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	var stored models.Account
	require.NoError(t, db.First(&stored, "id = ?", account.ID).Error)
	assert.Empty(t, stored.VerifyCode)
	assert.Equal(t, tokens.RefreshToken, stored.RefreshToken)
}

func TestLoginFlow(t *testing.T) {
	svc, mailer, db := newTestService(t)
	created := register(t, svc)

	// inactive accounts cannot log in
	_, _, err := svc.Login("alice", "password123")
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.Status)

	_, _, err = svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "wrongpassword")
	require.Error(t, err)

	// login works by username or email and clears a pending self-removal
	removeAt := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, db.Model(created).Update("self_remove_time", removeAt).Error)

	account, tokens, err := svc.Login("Alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Nil(t, account.SelfRemoveTime)

	var stored models.Account
	require.NoError(t, db.First(&stored, "id = ?", account.ID).Error)
	assert.Nil(t, stored.SelfRemoveTime)
}

func TestValidateAccessToken(t *testing.T) {
	svc, mailer, db := newTestService(t)
	register(t, svc)
	account, tokens, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	got, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = svc.ValidateAccessToken("not-a-token")
	require.Error(t, err)

	// a deleted account fails validation even with a valid signature
	require.NoError(t, db.Model(account).Update("deleted_at", time.Now().UTC()).Error)
	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	require.Error(t, err)
}

func TestRefreshRotation(t *testing.T) {
	svc, mailer, db := newTestService(t)
	register(t, svc)
	account, tokens, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	rotated, err := svc.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// the old refresh token is dead after rotation
	_, err = svc.Refresh(tokens.RefreshToken)
	require.Error(t, err)

	// expired refresh tokens are rejected
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Model(account).Update("refresh_token_expiry", past).Error)
	_, err = svc.Refresh(rotated.RefreshToken)
	require.Error(t, err)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, mailer, db := newTestService(t)
	register(t, svc)
	account, tokens, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	require.NoError(t, svc.Logout(account.ID))

	var stored models.Account
	require.NoError(t, db.First(&stored, "id = ?", account.ID).Error)
	assert.Empty(t, stored.AccessToken)
	assert.Empty(t, stored.RefreshToken)

	_, err = svc.Refresh(tokens.RefreshToken)
	require.Error(t, err)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	register(t, svc)
	_, _, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	// unknown emails are not revealed
	require.NoError(t, svc.ForgotPassword("nobody@example.com"))

	require.NoError(t, svc.ForgotPassword("alice@example.com"))
	require.Len(t, mailer.codes, 2)
	code := mailer.codes[1]

	_, err = svc.ConfirmForgotPassword("alice@example.com", "000000x")
	require.Error(t, err)

	resetToken, err := svc.ConfirmForgotPassword("alice@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	// the emailed code is spent after confirmation
	_, err = svc.ConfirmForgotPassword("alice@example.com", code)
	require.Error(t, err)

	require.NoError(t, svc.ResetPassword("alice@example.com", resetToken, "newpassword1"))

	_, _, err = svc.Login("alice", "password123")
	require.Error(t, err)
	_, _, err = svc.Login("alice", "newpassword1")
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	register(t, svc)
	account, _, err := svc.ConfirmRegister("alice@example.com", mailer.codes[0])
	require.NoError(t, err)

	err = svc.ChangePassword(account.ID, "wrong", "newpassword1")
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, "WrongPassword", appErr.Fields["oldPassword"])

	require.NoError(t, svc.ChangePassword(account.ID, "password123", "newpassword1"))
	_, _, err = svc.Login("alice", "newpassword1")
	require.NoError(t, err)
}
