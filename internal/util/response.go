package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/logger"
)

// Envelope is the uniform response body. statusCode mirrors the HTTP
// status so clients behind buffering proxies can still branch on it.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// RespondSuccess sends a 200 envelope
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    apperr.MsgSuccess,
		Data:       data,
	})
}

// RespondSuccessMessage sends a 200 envelope with a non-default message key
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
	})
}

// RespondCreated sends a 201 envelope
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{
		StatusCode: http.StatusCreated,
		Message:    apperr.MsgSuccess,
		Data:       data,
	})
}

// RespondError translates any error into the envelope. Typed service
// failures keep their status and message key; everything else is logged
// and surfaced as a generic 500.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperr.Error); ok {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Log.Error("request failed",
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.Status),
				zap.String("path", c.FullPath()),
			)
		}
		var data interface{}
		if len(appErr.Fields) > 0 {
			data = appErr.Fields
		}
		c.JSON(appErr.Status, Envelope{
			StatusCode: appErr.Status,
			Message:    appErr.Message,
			Data:       data,
		})
		return
	}

	logger.Log.Error("unhandled error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
	)
	c.JSON(http.StatusInternalServerError, Envelope{
		StatusCode: http.StatusInternalServerError,
		Message:    apperr.MsgInternalServerError,
	})
}

// RespondUnauthorized sends a 401 envelope
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = apperr.MsgUnauthorized
	}
	c.JSON(http.StatusUnauthorized, Envelope{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	})
}

// RespondBadRequest sends a 400 envelope with the given message key
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		StatusCode: http.StatusBadRequest,
		Message:    message,
	})
}
