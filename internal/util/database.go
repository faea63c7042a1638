package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
)

// HandleDBError translates a database error into an envelope response.
// Returns true if the error was handled and a response was written.
func HandleDBError(c *gin.Context, err error, notFoundMessage string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, apperr.NotFound(notFoundMessage))
		return true
	}

	RespondError(c, err)
	return true
}
