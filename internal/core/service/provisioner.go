package service

import (
	"strings"

	"github.com/norsu/hrportal/internal/core/domain"
)

// Provisioner picks the role for a profile created without an explicit one.
//
// With the email heuristic enabled, an address containing "admin" or "super"
// yields super_admin and one containing "hr" yields hr. The heuristic grants
// elevated roles without any confirmation step, so deployments should keep it
// disabled unless addresses are issued centrally.
type Provisioner struct {
	emailHeuristic bool
}

func NewProvisioner(emailHeuristic bool) *Provisioner {
	return &Provisioner{emailHeuristic: emailHeuristic}
}

// CandidateRole returns the default role for email.
func (p *Provisioner) CandidateRole(email string) domain.Role {
	if p == nil || !p.emailHeuristic {
		return domain.RoleApplicant
	}
	e := strings.ToLower(email)
	switch {
	case strings.Contains(e, "admin"), strings.Contains(e, "super"):
		return domain.RoleSuperAdmin
	case strings.Contains(e, "hr"):
		return domain.RoleHR
	default:
		return domain.RoleApplicant
	}
}

// HeuristicEnabled reports whether email-based elevation is active.
func (p *Provisioner) HeuristicEnabled() bool {
	return p != nil && p.emailHeuristic
}
