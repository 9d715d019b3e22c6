package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

type errorMapping struct {
	target error
	code   int
	// detail sends err.Error() instead of the sentinel text, for validation
	// failures whose wrapped message tells the caller what to fix.
	detail bool
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, false},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, false},
	{domain.ErrSessionRevoked, http.StatusUnauthorized, false},
	{domain.ErrResolutionFailed, http.StatusUnauthorized, false},
	{domain.ErrProvisioningFailed, http.StatusUnauthorized, false},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, false},

	{domain.ErrForbidden, http.StatusForbidden, false},
	{domain.ErrProtectedProfile, http.StatusForbidden, false},

	{domain.ErrIdentityExists, http.StatusConflict, false},
	{domain.ErrProfileExists, http.StatusConflict, false},
	{domain.ErrDuplicateApplication, http.StatusConflict, false},
	{domain.ErrJobHasApplications, http.StatusConflict, false},
	{domain.ErrJobClosed, http.StatusConflict, false},

	{domain.ErrIdentityNotFound, http.StatusNotFound, false},
	{domain.ErrProfileNotFound, http.StatusNotFound, false},
	{domain.ErrJobNotFound, http.StatusNotFound, false},
	{domain.ErrApplicationNotFound, http.StatusNotFound, false},
	{domain.ErrObjectNotFound, http.StatusNotFound, false},

	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, false},
	{domain.ErrInvalidFile, http.StatusBadRequest, false},
	{domain.ErrInvalidRole, http.StatusBadRequest, true},
	{domain.ErrInvalidStatus, http.StatusBadRequest, true},
	{domain.ErrInvalidInput, http.StatusBadRequest, true},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.detail {
				return m.code, err.Error()
			}
			return m.code, m.target.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
