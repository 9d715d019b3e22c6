package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// RoleResolver implements ports.RoleResolver.
type RoleResolver struct {
	identities  ports.IdentityRepository
	profiles    ports.ProfileRepository
	provisioner *Provisioner
	log         zerolog.Logger
	now         func() time.Time
	onProvision func(role domain.Role, err error)
}

func NewRoleResolver(identities ports.IdentityRepository, profiles ports.ProfileRepository, provisioner *Provisioner, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{
		identities:  identities,
		profiles:    profiles,
		provisioner: provisioner,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// OnProvision registers fn to be called after every first-login provisioning
// attempt with the candidate role and the outcome.
func (r *RoleResolver) OnProvision(fn func(role domain.Role, err error)) {
	r.onProvision = fn
}

// Resolve returns the Principal for session, creating its profile when it
// does not exist yet. Store failures are returned as
// domain.ErrResolutionFailed or domain.ErrProvisioningFailed, never as a
// defaulted role.
func (r *RoleResolver) Resolve(ctx context.Context, session *domain.Session) (domain.Principal, error) {
	if session == nil || session.IdentityID == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrResolutionFailed, err)
	}

	profile, err := r.profiles.FindByID(ctx, session.IdentityID)
	if err == nil {
		return r.trusted(profile, session), nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Principal{}, fmt.Errorf("%w: lookup profile: %w", domain.ErrResolutionFailed, err)
	}

	return r.provision(ctx, session)
}

func (r *RoleResolver) provision(ctx context.Context, session *domain.Session) (principal domain.Principal, err error) {
	// A token outlives the account it was issued for. Only a live identity
	// may get a profile, and its stored email decides the candidate role.
	identity, err := r.identities.FindByID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			r.log.Warn().Str("identity_id", session.IdentityID).Msg("session for removed identity, refusing to provision")
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("%w: lookup identity: %w", domain.ErrResolutionFailed, err)
	}

	candidate := r.provisioner.CandidateRole(identity.Email)
	if r.onProvision != nil {
		defer func() { r.onProvision(candidate, err) }()
	}
	now := r.now()

	stored, err := r.profiles.Insert(ctx, &domain.Profile{
		ID:        session.IdentityID,
		Email:     identity.Email,
		Role:      candidate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == nil {
		level := zerolog.InfoLevel
		if candidate != domain.RoleApplicant {
			level = zerolog.WarnLevel
		}
		r.log.WithLevel(level).Str("profile_id", stored.ID).
			Str("role", stored.Role.String()).
			Bool("email_heuristic", r.provisioner.HeuristicEnabled()).
			Msg("profile provisioned on first login")
		return r.trusted(stored, session), nil
	}

	// Another request created the row first; the stored row wins.
	if errors.Is(err, domain.ErrProfileExists) {
		existing, lookupErr := r.profiles.FindByID(ctx, session.IdentityID)
		if lookupErr != nil {
			return domain.Principal{}, fmt.Errorf("%w: re-read profile: %w", domain.ErrResolutionFailed, lookupErr)
		}
		return r.trusted(existing, session), nil
	}

	r.log.Warn().Err(err).Str("profile_id", session.IdentityID).Msg("profile insert failed, retrying lookup")

	existing, lookupErr := r.profiles.FindByID(ctx, session.IdentityID)
	switch {
	case lookupErr == nil:
		return r.trusted(existing, session), nil
	case errors.Is(lookupErr, domain.ErrProfileNotFound):
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrProvisioningFailed, err)
	default:
		return domain.Principal{}, fmt.Errorf("%w: retry lookup: %w", domain.ErrResolutionFailed, lookupErr)
	}
}

// trusted validates the stored role. A corrupt value is downgraded to
// applicant, never upgraded.
func (r *RoleResolver) trusted(p *domain.Profile, session *domain.Session) domain.Principal {
	principal := p.Principal()
	if !principal.Role.Valid() {
		r.log.Warn().
			Str("profile_id", p.ID).
			Str("stored_role", string(p.Role)).
			Msg("corrupt role on profile, treating as applicant")
		principal.Role = domain.RoleApplicant
	}
	if principal.Email == "" {
		principal.Email = session.Email
	}
	return principal
}
