package authsdk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/siteauth/pkg/httpx"
)

// Error types carried in the "type" field of an error body.
const (
	TypeValidation            = "ValidationError"
	TypeNotFound              = "NotFoundError"
	TypeUnauthorized          = "UnauthorizedError"
	TypeForbidden             = "NoPermissionError"
	TypeAlreadyConfigured     = "AlreadyConfiguredError"
	TypeNotConfigured         = "NotConfiguredError"
	TypeConflict              = "ConflictError"
	TypeInvalidOrExpired      = "InvalidTokenError"
	TypePasswordResetRequired = "PasswordResetRequiredError"
	TypeTooManyRequests       = "TooManyRequestsError"
	TypeBadRequest            = "BadRequestError"
	TypeInternal              = "InternalServerError"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Errors     []httpx.ErrorItem
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("siteauth: http %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, it := range e.Errors {
		msgs = append(msgs, it.Type+": "+it.Message)
	}
	return fmt.Sprintf("siteauth: http %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// Type returns the type of the first error item, or "" if there is none.
func (e *APIError) Type() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Type
}

// IsErrorType reports whether err is an APIError of the given type.
func IsErrorType(err error, typ string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type() == typ
}
