package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// Gate runs the protected page lifecycle:
// Unchecked -> Checking -> {Authorized, Redirecting}.
type Gate struct {
	identity ports.IdentityService
	resolver ports.RoleResolver
	log      zerolog.Logger
}

func NewGate(identity ports.IdentityService, resolver ports.RoleResolver, log zerolog.Logger) *Gate {
	return &Gate{identity: identity, resolver: resolver, log: log}
}

type gateRun struct {
	state domain.GateState
	path  string
	log   zerolog.Logger
}

func (r *gateRun) to(next domain.GateState) {
	if !r.state.CanTransitionTo(next) {
		panic(fmt.Sprintf("gate: invalid transition %s -> %s", r.state, next))
	}
	r.log.Trace().Str("path", r.path).Str("from", r.state.String()).Str("to", next.String()).Msg("gate transition")
	r.state = next
}

// Check authorizes a request for path. Every failure ends in Redirecting:
// authentication and resolution failures go to the login screen with the
// original path preserved, role mismatches go to the caller's own home.
func (g *Gate) Check(ctx context.Context, token, path string, required ...domain.Role) ports.GateResult {
	run := &gateRun{state: domain.GateUnchecked, path: path, log: g.log}
	run.to(domain.GateChecking)

	toLogin := func(err error) ports.GateResult {
		run.to(domain.GateRedirecting)
		return ports.GateResult{State: run.state, Redirect: domain.LoginRedirect(path), Err: err}
	}

	session, err := g.identity.Session(ctx, token)
	if err != nil {
		return toLogin(err)
	}

	principal, err := g.resolver.Resolve(ctx, session)
	if err != nil {
		g.log.Warn().Err(err).Str("path", path).Msg("role resolution failed, sending to login")
		return toLogin(err)
	}

	// The request may have been abandoned while resolving.
	if err := ctx.Err(); err != nil {
		return toLogin(err)
	}

	decision := domain.Guard(required, principal.Role)
	if !decision.Allowed {
		run.to(domain.GateRedirecting)
		return ports.GateResult{
			State:     run.state,
			Principal: principal,
			Redirect:  decision.Redirect,
			Err:       domain.ErrForbidden,
		}
	}

	run.to(domain.GateAuthorized)
	return ports.GateResult{State: run.state, Principal: principal}
}
