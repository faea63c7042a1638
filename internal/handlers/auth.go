package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/middleware"
	"github.com/quillhub/quillhub/internal/util"
)

const accessTokenMaxAge = 24 * 60 * 60

func setAccessTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, accessTokenMaxAge, "/", "", false, true)
}

func clearAccessTokenCookie(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
}

// Register creates an inactive account and emails a confirmation code
// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	account, err := h.auth.Register(req)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondCreated(c, gin.H{"email": account.Email})
}

// ConfirmRegister activates an account with the emailed code and signs it in
// POST /api/auth/confirm-register
func (h *Handlers) ConfirmRegister(c *gin.Context) {
	var req dto.ConfirmRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	account, tokens, err := h.auth.ConfirmRegister(req.Email, req.Code)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	setAccessTokenCookie(c, tokens.AccessToken)
	util.RespondSuccess(c, gin.H{
		"account":      dto.ToAccountSummary(account, false),
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

// Login authenticates by username or email
// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	account, tokens, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	setAccessTokenCookie(c, tokens.AccessToken)
	util.RespondSuccess(c, gin.H{
		"account":      dto.ToAccountSummary(account, false),
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

// RefreshToken rotates the token pair
// POST /api/auth/refresh-token
func (h *Handlers) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		clearAccessTokenCookie(c)
		util.RespondError(c, err)
		return
	}

	setAccessTokenCookie(c, tokens.AccessToken)
	util.RespondSuccess(c, tokens)
}

// Logout invalidates the caller's session
// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	if err := h.auth.Logout(accountID); err != nil {
		util.RespondError(c, err)
		return
	}

	clearAccessTokenCookie(c)
	util.RespondSuccess(c, nil)
}

// ForgotPassword emails a recovery code. Responds success regardless of
// whether the address is registered.
// POST /api/auth/forgot-password
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.ForgotPassword(req.Email); err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, nil)
}

// ConfirmForgotPassword exchanges the emailed code for a reset token
// POST /api/auth/confirm-forgot-password
func (h *Handlers) ConfirmForgotPassword(c *gin.Context) {
	var req dto.ConfirmForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resetToken, err := h.auth.ConfirmForgotPassword(req.Email, req.Code)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, gin.H{"resetToken": resetToken})
}

// ResetPassword sets a new password using a reset token and signs out
// every session
// POST /api/auth/reset-password
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.ResetPassword(req.Email, req.ResetToken, req.NewPassword); err != nil {
		util.RespondError(c, err)
		return
	}

	clearAccessTokenCookie(c)
	util.RespondSuccess(c, nil)
}
