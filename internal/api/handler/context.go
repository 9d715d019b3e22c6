package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/middleware"
	"github.com/norsu/hrportal/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fails fast before any service call when it is absent. Its presence proves
// the middleware ran and the role was resolved server side.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}
