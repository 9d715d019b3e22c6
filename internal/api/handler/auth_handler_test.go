package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/api/middleware"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

func newAuthFixture() (*AuthHandler, *stubIdentityService, *stubResolver) {
	expires := time.Now().Add(time.Hour)
	identity := &stubIdentityService{
		signInFn: func(_ context.Context, email, password string) (string, *domain.Session, error) {
			if email != "hr.jane@norsu.edu.ph" || password != "secret1" {
				return "", nil, domain.ErrInvalidCredentials
			}
			return "tok-hr", &domain.Session{IdentityID: hrActor.ID, Email: email, TokenID: "t1", ExpiresAt: expires}, nil
		},
		sessions: map[string]*domain.Session{
			"tok-hr": {IdentityID: hrActor.ID, Email: hrActor.Email, TokenID: "t1", ExpiresAt: expires},
		},
	}
	resolver := &stubResolver{principals: map[string]domain.Principal{hrActor.ID: hrActor}}
	return NewAuthHandler(identity, resolver, true, zerolog.Nop()), identity, resolver
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	h, identity, _ := newAuthFixture()
	identity.signUpFn = func(_ context.Context, in ports.SignUpInput) (*domain.Identity, error) {
		if in.Email != "juan@example.com" || in.Phone != "0917" {
			t.Fatalf("unexpected input %+v", in)
		}
		return &domain.Identity{ID: "id-1", Email: in.Email}, nil
	}

	c, rec := postJSON(newTestEcho(), "/api/auth/signup", `{"email":"juan@example.com","password":"secret1","phone":"0917"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp signUpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != "id-1" || resp.User.Email != "juan@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestAuthHandler_SignUp_Validation(t *testing.T) {
	h, identity, _ := newAuthFixture()
	identity.signUpFn = func(context.Context, ports.SignUpInput) (*domain.Identity, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	c, _ := postJSON(newTestEcho(), "/api/auth/signup", `{"email":"not-an-email","password":"123"}`)
	err := h.SignUp(c)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "email must be a valid email") || !strings.Contains(err.Error(), "password must be at least 6") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAuthHandler_SignUp_Exists(t *testing.T) {
	h, identity, _ := newAuthFixture()
	identity.signUpFn = func(context.Context, ports.SignUpInput) (*domain.Identity, error) {
		return nil, domain.ErrIdentityExists
	}

	c, _ := postJSON(newTestEcho(), "/api/auth/signup", `{"email":"juan@example.com","password":"secret1"}`)
	if err := h.SignUp(c); !errors.Is(err, domain.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		target   string
		redirect string
	}{
		{"no next", `{"email":"hr.jane@norsu.edu.ph","password":"secret1"}`, "/api/auth/login", domain.HRHome},
		{"next inside area", `{"email":"hr.jane@norsu.edu.ph","password":"secret1","next":"/hr/applications"}`, "/api/auth/login", "/hr/applications"},
		{"next outside area", `{"email":"hr.jane@norsu.edu.ph","password":"secret1","next":"/admin/users"}`, "/api/auth/login", domain.HRHome},
		{"next from query", `{"email":"hr.jane@norsu.edu.ph","password":"secret1"}`, "/api/auth/login?next=%2Fhr%2Fjobs", "/hr/jobs"},
		{"external next", `{"email":"hr.jane@norsu.edu.ph","password":"secret1","next":"https://evil.example/hr"}`, "/api/auth/login", domain.HRHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newAuthFixture()
			c, rec := postJSON(newTestEcho(), tt.target, tt.body)

			if err := h.Login(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var resp loginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Token != "tok-hr" || resp.User.Role != domain.RoleHR {
				t.Fatalf("unexpected response %+v", resp)
			}
			if resp.Redirect != tt.redirect {
				t.Fatalf("expected redirect %q, got %q", tt.redirect, resp.Redirect)
			}

			cookie := rec.Result().Cookies()
			if len(cookie) != 1 || cookie[0].Name != middleware.SessionCookie || cookie[0].Value != "tok-hr" {
				t.Fatalf("session cookie not set: %+v", cookie)
			}
			if !cookie[0].HttpOnly || !cookie[0].Secure {
				t.Fatal("session cookie must be HttpOnly and Secure")
			}
		})
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	h, _, resolver := newAuthFixture()

	c, rec := postJSON(newTestEcho(), "/api/auth/login", `{"email":"hr.jane@norsu.edu.ph","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("failed login must not set a cookie")
	}

	resolver.err = domain.ErrProvisioningFailed
	c, rec = postJSON(newTestEcho(), "/api/auth/login", `{"email":"hr.jane@norsu.edu.ph","password":"secret1"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("unresolved login must not set a cookie")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h, identity, _ := newAuthFixture()
	var revoked string
	identity.signOutFn = func(_ context.Context, token string) error {
		revoked = token
		return nil
	}

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-hr")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || revoked != "tok-hr" {
		t.Fatalf("expected 204 and revoked token, got %d %q", rec.Code, revoked)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cookies)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	h, _, _ := newAuthFixture()

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), httptest.NewRecorder())
	if err := h.Session(c); err == nil {
		t.Fatal("expected error without principal")
	}

	rec := httptest.NewRecorder()
	c = withPrincipal(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), rec), hrActor)
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User != hrActor {
		t.Fatalf("unexpected user %+v", resp.User)
	}
}

func TestAuthHandler_LoginPage(t *testing.T) {
	h, _, _ := newAuthFixture()
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/login?next=%2Fadmin%2Fusers", nil)
	rec := httptest.NewRecorder()
	if err := h.LoginPage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"next":"/admin/users"`) {
		t.Fatalf("expected login page with next, got %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/login?next=%2Fadmin%2Fusers", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok-hr"})
	rec = httptest.NewRecorder()
	if err := h.LoginPage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != domain.HRHome {
		t.Fatalf("signed in hr should be sent home, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
