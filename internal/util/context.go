package util

import (
	"github.com/gin-gonic/gin"

	"github.com/quillhub/quillhub/internal/models"
)

// GetAccountFromContext extracts the authenticated account from the Gin
// context. If absent it responds 401 and returns false.
func GetAccountFromContext(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get("account")
	if !exists {
		RespondUnauthorized(c, "")
		return nil, false
	}
	account, ok := value.(*models.Account)
	if !ok {
		RespondUnauthorized(c, "")
		return nil, false
	}
	return account, true
}

// GetAccountIDFromContext extracts the authenticated account ID from the
// Gin context. If absent it responds 401 and returns false.
func GetAccountIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get("account_id")
	if !exists {
		RespondUnauthorized(c, "")
		return "", false
	}
	id, ok := value.(string)
	if !ok || id == "" {
		RespondUnauthorized(c, "")
		return "", false
	}
	return id, true
}

// ViewerIDFromContext returns the account ID if a viewer is authenticated,
// or the empty string for anonymous requests. Never writes a response.
func ViewerIDFromContext(c *gin.Context) string {
	if value, exists := c.Get("account_id"); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
