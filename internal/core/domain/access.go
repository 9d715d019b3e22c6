package domain

import (
	"net/url"
	"strings"
)

// Principal is the trusted identity/role triple produced by the role resolver.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Decision is the outcome of Guard.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard allows current iff it is one of required. A denied caller is sent to
// their own home, never to a generic forbidden page.
func Guard(required []Role, current Role) Decision {
	for _, r := range required {
		if r == current {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: RouteFor(current)}
}

// SafeNext returns next when it is a local path inside an area the role may
// open, otherwise the role's home.
func SafeNext(next string, role Role) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return RouteFor(role)
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return RouteFor(role)
	}
	area, ok := AreaFor(u.Path)
	if !ok || !Guard([]Role{area}, role).Allowed {
		return RouteFor(role)
	}
	return next
}

// GateState is the per-request lifecycle of a protected page.
type GateState int

const (
	GateUnchecked GateState = iota
	GateChecking
	GateAuthorized
	GateRedirecting
)

func (s GateState) String() string {
	switch s {
	case GateUnchecked:
		return "unchecked"
	case GateChecking:
		return "checking"
	case GateAuthorized:
		return "authorized"
	case GateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

var gateTransitions = map[GateState][]GateState{
	GateUnchecked: {GateChecking},
	GateChecking:  {GateAuthorized, GateRedirecting},
}

// CanTransitionTo reports whether the gate may move from s to next.
func (s GateState) CanTransitionTo(next GateState) bool {
	for _, allowed := range gateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can happen.
func (s GateState) Terminal() bool {
	return s == GateAuthorized || s == GateRedirecting
}
