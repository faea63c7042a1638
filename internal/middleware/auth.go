package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/auth"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/util"
)

// AccessTokenCookie is the HTTP-only cookie the SPA authenticates with.
// The Authorization header is the fallback for tooling.
const AccessTokenCookie = "accessToken"

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAuth resolves the caller once and stores the account in the
// request context. Requests without a valid live account get a 401.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			util.RespondUnauthorized(c, "")
			c.Abort()
			return
		}

		account, err := authService.ValidateAccessToken(token)
		if err != nil {
			util.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set("account", account)
		c.Set("account_id", account.ID)
		c.Next()
	}
}

// OptionalAuth resolves the caller if credentials are present, so public
// listings can still project viewer-relative fields. Invalid credentials
// are treated as anonymous rather than rejected.
func OptionalAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token != "" {
			if account, err := authService.ValidateAccessToken(token); err == nil {
				c.Set("account", account)
				c.Set("account_id", account.ID)
			}
		}
		c.Next()
	}
}

// RequireStatus gates a route on account status. Reads typically allow
// active and suspended; writes allow active only.
func RequireStatus(statuses ...models.AccountStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := util.GetAccountFromContext(c)
		if !ok {
			c.Abort()
			return
		}

		for _, status := range statuses {
			if account.Status == status {
				c.Next()
				return
			}
		}

		util.RespondError(c, apperr.Forbidden())
		c.Abort()
	}
}
