package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// SessionCookie carries the session token for browser page requests.
const SessionCookie = "hr_session"

const (
	principalKey = "principal"
	sessionKey   = "session"
)

// errBadAuthHeader marks an Authorization header that is present but not a
// bearer token.
var errBadAuthHeader = errors.New("invalid authorization header")

// Token extracts the session token from the Authorization header, falling
// back to the session cookie.
func Token(c echo.Context) (string, error) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errBadAuthHeader
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", nil
}

// SessionReader decodes session tokens. ports.IdentityService satisfies it.
type SessionReader interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// Auth validates the session token, resolves the caller's role from the
// profile store and injects the resulting Principal into the context. Any
// failure is a 401; the token itself never carries a role.
func Auth(identity SessionReader, resolver ports.RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := Token(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			ctx := c.Request().Context()
			session, err := identity.Session(ctx, token)
			if err != nil {
				msg := "invalid session"
				if errors.Is(err, domain.ErrSessionRevoked) {
					msg = domain.ErrSessionRevoked.Error()
				}
				return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(err)
			}

			principal, err := resolver.Resolve(ctx, session)
			metrics.RoleResolutionsTotal.WithLabelValues(metrics.ResolutionOutcome(err)).Inc()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed").SetInternal(err)
			}
			metrics.ResolvedRolesTotal.WithLabelValues(principal.Role.String()).Inc()

			c.Set(sessionKey, session)
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the Principal injected by Auth or PageGate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && p.ID != ""
}

// SessionFrom returns the session injected by Auth.
func SessionFrom(c echo.Context) (*domain.Session, bool) {
	s, ok := c.Get(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

// SetPrincipal injects p into the context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
