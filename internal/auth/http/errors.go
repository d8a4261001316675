package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

type errorMapping struct {
	target  error
	status  int
	typ     string
	message string
}

var errorMappings = []errorMapping{
	{service.ErrAlreadyConfigured, http.StatusForbidden, authsdk.TypeAlreadyConfigured, "Setup has already been completed."},
	{service.ErrNotConfigured, http.StatusBadRequest, authsdk.TypeNotConfigured, "Setup has not been completed."},
	{service.ErrNotFound, http.StatusNotFound, authsdk.TypeNotFound, "Invitation not found or no longer valid."},
	{service.ErrConflict, http.StatusUnprocessableEntity, authsdk.TypeConflict, "Email address is already in use."},
	{service.ErrUnauthorized, http.StatusUnauthorized, authsdk.TypeUnauthorized, "Authorization failed."},
	{service.ErrInvalidOrExpired, http.StatusBadRequest, authsdk.TypeInvalidOrExpired, "Token is invalid or has expired."},
	{service.ErrForbidden, http.StatusForbidden, authsdk.TypeForbidden, "You do not have permission to perform this action."},
	{service.ErrPasswordResetRequired, http.StatusForbidden, authsdk.TypePasswordResetRequired, "Your password must be reset before you can sign in."},
}

// writeServiceError renders a service error with its mapped status. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.TypeValidation, "Validation failed.", fieldContext(verr))
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			httpx.WriteError(w, m.status, m.typ, m.message, "")
			return
		}
	}

	slogx.FromContext(r.Context()).Error("unhandled service error", slog.Any("error", err))
	httpx.WriteError(w, http.StatusInternalServerError, authsdk.TypeInternal, "An unexpected error occurred.", "")
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httpx.WriteError(w, http.StatusBadRequest, authsdk.TypeBadRequest, message, "")
}

func fieldContext(verr *service.ValidationError) string {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+verr.Fields[k])
	}
	return strings.Join(parts, "; ")
}
