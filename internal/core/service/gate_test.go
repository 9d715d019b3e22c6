package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

type stubResolver struct {
	principal domain.Principal
	err       error
	// cancel, when set, runs during Resolve to simulate the caller leaving.
	cancel func()
}

func (r *stubResolver) Resolve(context.Context, *domain.Session) (domain.Principal, error) {
	if r.cancel != nil {
		r.cancel()
	}
	return r.principal, r.err
}

func newGateFixture(t *testing.T, resolver ports.RoleResolver) (*Gate, string) {
	t.Helper()
	f := newIdentityFixture(false)
	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "user@example.com", Password: "goodpass"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	token, _, err := f.svc.SignIn(context.Background(), "user@example.com", "goodpass")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return NewGate(f.svc, resolver, zerolog.Nop()), token
}

func TestGate_Authorized(t *testing.T) {
	gate, token := newGateFixture(t, &stubResolver{principal: hrUser})

	res := gate.Check(context.Background(), token, "/hr/applications", domain.RoleHR, domain.RoleSuperAdmin)
	if res.State != domain.GateAuthorized || res.Err != nil {
		t.Fatalf("expected authorized, got %+v", res)
	}
	if res.Principal != hrUser {
		t.Fatalf("unexpected principal %+v", res.Principal)
	}
}

func TestGate_WrongRoleGoesHome(t *testing.T) {
	gate, token := newGateFixture(t, &stubResolver{principal: applicant})

	res := gate.Check(context.Background(), token, "/admin/users", domain.RoleSuperAdmin)
	if res.State != domain.GateRedirecting {
		t.Fatalf("expected redirecting, got %s", res.State)
	}
	if res.Redirect != domain.ApplicantHome {
		t.Fatalf("expected redirect to %s, got %s", domain.ApplicantHome, res.Redirect)
	}
	if !errors.Is(res.Err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", res.Err)
	}
}

func TestGate_NoSessionGoesToLogin(t *testing.T) {
	gate, _ := newGateFixture(t, &stubResolver{principal: applicant})

	res := gate.Check(context.Background(), "", "/applicant/jobs", domain.RoleApplicant)
	if res.State != domain.GateRedirecting {
		t.Fatalf("expected redirecting, got %s", res.State)
	}
	if res.Redirect != "/login?next=%2Fapplicant%2Fjobs" {
		t.Fatalf("unexpected redirect %q", res.Redirect)
	}
}

func TestGate_ResolutionFailureGoesToLogin(t *testing.T) {
	gate, token := newGateFixture(t, &stubResolver{err: domain.ErrProvisioningFailed})

	res := gate.Check(context.Background(), token, "/hr/dashboard", domain.RoleHR)
	if res.State != domain.GateRedirecting || res.Redirect != domain.LoginRedirect("/hr/dashboard") {
		t.Fatalf("expected login redirect, got %+v", res)
	}
	if !errors.Is(res.Err, domain.ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", res.Err)
	}
	if res.Principal.Role != "" {
		t.Fatalf("no role may leak from a failed resolution, got %s", res.Principal.Role)
	}
}

func TestGate_AbandonedRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	gate, token := newGateFixture(t, &stubResolver{principal: superAdmin, cancel: cancel})

	res := gate.Check(ctx, token, "/admin/dashboard", domain.RoleSuperAdmin)
	if res.State == domain.GateAuthorized {
		t.Fatalf("abandoned request must not be authorized")
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
}

func TestGateState_Transitions(t *testing.T) {
	if !domain.GateUnchecked.CanTransitionTo(domain.GateChecking) {
		t.Fatal("unchecked -> checking must be allowed")
	}
	if domain.GateUnchecked.CanTransitionTo(domain.GateAuthorized) {
		t.Fatal("unchecked -> authorized must not be allowed")
	}
	if domain.GateAuthorized.CanTransitionTo(domain.GateChecking) || domain.GateRedirecting.CanTransitionTo(domain.GateAuthorized) {
		t.Fatal("terminal states must not transition")
	}
	if !domain.GateAuthorized.Terminal() || domain.GateChecking.Terminal() {
		t.Fatal("unexpected terminal classification")
	}
}
