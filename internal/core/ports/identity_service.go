package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// SignUpInput carries the public registration form.
type SignUpInput struct {
	Email    string
	Password string
	Phone    string
}

// IdentityService is the identity store: credentials in, sessions out.
type IdentityService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.Identity, error)
	// SignIn validates credentials and returns a signed session token.
	SignIn(ctx context.Context, email, password string) (string, *domain.Session, error)
	SignOut(ctx context.Context, token string) error
	// Session decodes and validates a token. Any failure is reported as
	// domain.ErrUnauthenticated (or domain.ErrSessionRevoked).
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// RoleResolver turns a validated session into a trusted Principal,
// provisioning a missing profile on the way.
type RoleResolver interface {
	Resolve(ctx context.Context, session *domain.Session) (domain.Principal, error)
}

// GateResult is the terminal outcome of a page gate check.
type GateResult struct {
	State     domain.GateState
	Principal domain.Principal
	Redirect  string
	Err       error
}

// PageGate authorizes protected page requests.
type PageGate interface {
	Check(ctx context.Context, token, path string, required ...domain.Role) GateResult
}
