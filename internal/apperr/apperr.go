// Package apperr defines the typed failures services raise and the
// machine-readable message keys clients switch on. Handlers translate
// them into the response envelope at the boundary.
package apperr

import "net/http"

// Message keys. Clients localize these, so they are identifiers, not prose.
const (
	MsgSuccess                = "Success"
	MsgNoAccount              = "NoAccount"
	MsgNoPost                 = "NoPost"
	MsgNoComment              = "NoComment"
	MsgUsernameExists         = "UsernameExists"
	MsgInvalidToken           = "InvalidToken"
	MsgUnauthorized           = "Unauthorized"
	MsgForbidden              = "Forbidden"
	MsgReplyAccountRequired   = "ReplyAccountRequired"
	MsgParentCommentRequired  = "ParentCommentRequired"
	MsgCommentAndPictureEmpty = "CommentAndPictureEmpty"
	MsgPostAndPictureEmpty    = "PostAndPictureEmpty"
	MsgCommentDeleted         = "CommentDeleted"
	MsgUpdateAccountFailed    = "UpdateAccountFailed"
	MsgInternalServerError    = "InternalServerError"
)

// Error is a service-level failure with an HTTP status and a message key.
// Fields, when present, map input field names to per-field reasons for
// inline form display.
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest creates a 400 error with the given message key
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	if message == "" {
		message = MsgUnauthorized
	}
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden creates a 403 error
func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Message: MsgForbidden}
}

// NotFound creates a 404 error with the given message key
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Validation creates a 400 error carrying per-field reasons
func Validation(message string, fields map[string]string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Fields: fields}
}

// Internal creates a generic 500 error. Internal detail never leaves the server.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MsgInternalServerError}
}
