package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// PageGate protects a page area. Unauthenticated callers are redirected to
// the login screen with the requested page preserved in next; callers of the
// wrong role are redirected to their own home.
func PageGate(gate ports.PageGate, area domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A malformed header is treated like no session at all.
			token, _ := Token(c)

			result := gate.Check(c.Request().Context(), token, c.Request().URL.RequestURI(), area)
			if result.State != domain.GateAuthorized {
				decision := "login"
				if result.Principal.ID != "" {
					decision = "home"
				}
				metrics.GateDecisionsTotal.WithLabelValues(area.String(), decision).Inc()
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				return c.Redirect(http.StatusFound, result.Redirect)
			}

			metrics.GateDecisionsTotal.WithLabelValues(area.String(), "authorized").Inc()
			SetPrincipal(c, result.Principal)
			return next(c)
		}
	}
}
