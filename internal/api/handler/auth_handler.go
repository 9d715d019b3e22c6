package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/api/middleware"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

type AuthHandler struct {
	identity     ports.IdentityService
	resolver     ports.RoleResolver
	cookieSecure bool
	log          zerolog.Logger
}

func NewAuthHandler(identity ports.IdentityService, resolver ports.RoleResolver, cookieSecure bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, resolver: resolver, cookieSecure: cookieSecure, log: log}
}

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"max=32"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Next     string `json:"next,omitempty"`
}

type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type signUpResponse struct {
	User identityResponse `json:"user"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	User      domain.Principal `json:"user"`
	Redirect  string           `json:"redirect"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type sessionResponse struct {
	User      domain.Principal `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type loginPageResponse struct {
	Page string `json:"page"`
	Next string `json:"next,omitempty"`
}

// SignUp registers a new identity. The profile role is decided server side.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Registration details"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, err := h.identity.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signUpResponse{User: identityResponse{ID: identity.ID, Email: identity.Email}})
}

// Login authenticates credentials, resolves the caller's role and returns
// the session token plus where the client should navigate next.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Param        next  query     string        false "Page requested before login"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	next := req.Next
	if next == "" {
		next = c.QueryParam("next")
	}

	ctx := c.Request().Context()
	token, session, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	principal, err := h.resolver.Resolve(ctx, session)
	metrics.RoleResolutionsTotal.WithLabelValues(metrics.ResolutionOutcome(err)).Inc()
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		h.log.Warn().Err(err).Str("identity_id", session.IdentityID).Msg("login succeeded but role resolution failed")
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.ResolvedRolesTotal.WithLabelValues(principal.Role.String()).Inc()

	h.setSessionCookie(c, token, session.ExpiresAt)
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		User:      principal,
		Redirect:  domain.SafeNext(next, principal.Role),
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout revokes the current session token and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := middleware.Token(c)
	if err != nil || token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	if err := h.identity.SignOut(c.Request().Context(), token); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Session returns the caller's resolved principal.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	resp := sessionResponse{User: principal}
	if s, ok := middleware.SessionFrom(c); ok {
		resp.ExpiresAt = s.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

// LoginPage sends an already signed-in caller on to next (or their home);
// anyone else gets the login page descriptor.
//
// @Summary      Login page
// @Tags         pages
// @Produce      json
// @Param        next  query     string  false  "Page requested before login"
// @Success      200   {object}  loginPageResponse
// @Success      302
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	next := c.QueryParam("next")

	if token, err := middleware.Token(c); err == nil && token != "" {
		ctx := c.Request().Context()
		if session, err := h.identity.Session(ctx, token); err == nil {
			if principal, err := h.resolver.Resolve(ctx, session); err == nil {
				return c.Redirect(http.StatusFound, domain.SafeNext(next, principal.Role))
			}
		}
	}

	return c.JSON(http.StatusOK, loginPageResponse{Page: "login", Next: next})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "rate_limited"
	default:
		return "error"
	}
}
