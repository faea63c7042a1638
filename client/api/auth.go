package api

import (
	"github.com/quillhub/quillhub/client/credentials"
	"github.com/quillhub/quillhub/client/logger"
	"github.com/quillhub/quillhub/client/transport"
)

// Register creates an inactive account; a confirmation code is emailed
func Register(username, email, password, name string) error {
	return transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/auth/register",
		Body: map[string]string{
			"username": username,
			"email":    email,
			"password": password,
			"name":     name,
		},
		NoRefresh: true,
	})
}

// ConfirmRegister activates the account with the emailed code and
// stores the resulting session
func ConfirmRegister(email, code string) (*Session, error) {
	var session Session
	err := transport.Do(transport.Request{
		Method:    "POST",
		Path:      "/api/auth/confirm-register",
		Body:      map[string]string{"email": email, "code": code},
		Result:    &session,
		NoRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	if err := storeSession(&session, email); err != nil {
		return nil, err
	}
	return &session, nil
}

// Login authenticates with username (or email) and password and stores
// the session
func Login(username, password string) (*Session, error) {
	var session Session
	err := transport.Do(transport.Request{
		Method:    "POST",
		Path:      "/api/auth/login",
		Body:      map[string]string{"username": username, "password": password},
		Result:    &session,
		NoRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	if err := storeSession(&session, ""); err != nil {
		return nil, err
	}

	logger.Debug("login successful", "username", username)
	return &session, nil
}

// Logout invalidates the server session and drops stored credentials
func Logout() error {
	err := transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/auth/logout",
	})
	if err != nil {
		logger.Warn("server logout failed", "error", err)
	}

	transport.ClearAuthToken()
	return credentials.Delete()
}

// ForgotPassword requests a recovery code by email
func ForgotPassword(email string) error {
	return transport.Do(transport.Request{
		Method:    "POST",
		Path:      "/api/auth/forgot-password",
		Body:      map[string]string{"email": email},
		NoRefresh: true,
	})
}

// ConfirmForgotPassword exchanges the emailed code for a reset token
func ConfirmForgotPassword(email, code string) (string, error) {
	var data struct {
		ResetToken string `json:"resetToken"`
	}
	err := transport.Do(transport.Request{
		Method:    "POST",
		Path:      "/api/auth/confirm-forgot-password",
		Body:      map[string]string{"email": email, "code": code},
		Result:    &data,
		NoRefresh: true,
	})
	return data.ResetToken, err
}

// ResetPassword sets a new password using a reset token
func ResetPassword(email, resetToken, newPassword string) error {
	return transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/auth/reset-password",
		Body: map[string]string{
			"email":       email,
			"resetToken":  resetToken,
			"newPassword": newPassword,
		},
		NoRefresh: true,
	})
}

func storeSession(session *Session, email string) error {
	creds := &credentials.Credentials{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Email:        email,
	}
	if session.Account != nil {
		creds.AccountID = session.Account.ID
		creds.Username = session.Account.Username
	}
	if err := credentials.Save(creds); err != nil {
		return err
	}
	transport.SetAuthToken(session.AccessToken)
	return nil
}
