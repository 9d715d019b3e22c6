package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// AdminService implements privileged user management.
type AdminService struct {
	identities   ports.IdentityRepository
	profiles     ports.ProfileRepository
	applications ports.ApplicationRepository
	jobs         ports.JobRepository
	objects      ports.ObjectStorage
	provisioner  *Provisioner
	log          zerolog.Logger
	now          func() time.Time
}

func NewAdminService(
	identities ports.IdentityRepository,
	profiles ports.ProfileRepository,
	applications ports.ApplicationRepository,
	jobs ports.JobRepository,
	objects ports.ObjectStorage,
	provisioner *Provisioner,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		identities:   identities,
		profiles:     profiles,
		applications: applications,
		jobs:         jobs,
		objects:      objects,
		provisioner:  provisioner,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) Stats(ctx context.Context, actor domain.Principal) (*ports.AdminStats, error) {
	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}

	var (
		stats ports.AdminStats
		err   error
	)
	if stats.TotalUsers, err = s.profiles.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalHRStaff, err = s.profiles.Count(ctx, domain.RoleHR); err != nil {
		return nil, fmt.Errorf("count hr staff: %w", err)
	}
	if stats.TotalApplications, err = s.applications.Count(ctx, ports.ApplicationFilter{}); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	if stats.PendingReviews, err = s.applications.Count(ctx, ports.ApplicationFilter{Status: domain.StatusForReview}); err != nil {
		return nil, fmt.Errorf("count pending reviews: %w", err)
	}
	return &stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor domain.Principal) ([]*domain.Profile, error) {
	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx)
}

// CreateUser creates the identity and then the profile. The two writes are not
// atomic: when the profile insert fails the identity is deleted again, and a
// failed rollback leaves an identity without a profile that the role resolver
// heals on the next sign in.
func (s *AdminService) CreateUser(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (profile *domain.Profile, err error) {
	defer func() { s.audit(actor, "create_user", in.Email, err) }()

	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	identity, err := s.identities.Create(ctx, &domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	profile, err = s.profiles.Insert(ctx, &domain.Profile{
		ID:        identity.ID,
		Email:     identity.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if rbErr := s.identities.Delete(ctx, identity.ID); rbErr != nil {
			s.log.Error().Err(rbErr).Str("identity_id", identity.ID).Msg("rollback of identity after failed profile insert failed")
		} else {
			s.log.Warn().Str("identity_id", identity.ID).Msg("identity rolled back after failed profile insert")
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (updated *domain.Profile, err error) {
	defer func() { s.audit(actor, "update_user", id, err) }()

	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}

	target, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Protected() {
		return nil, domain.ErrProtectedProfile
	}

	var patch domain.ProfilePatch
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != target.Email {
			patch.Email = &email
		}
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		patch.Phone = &phone
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &role
	}
	if patch.Empty() {
		return target, nil
	}

	if patch.Email != nil {
		if err := s.identities.UpdateEmail(ctx, id, *patch.Email); err != nil {
			if !errors.Is(err, domain.ErrIdentityNotFound) {
				return nil, fmt.Errorf("update identity email: %w", err)
			}
			s.log.Warn().Str("profile_id", id).Msg("profile has no identity, updating profile only")
		}
	}

	return s.profiles.Update(ctx, id, patch)
}

// DeleteUser removes the user's applications first, detaches their job
// postings, then deletes the profile and finally the identity.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Principal, id string) (err error) {
	defer func() { s.audit(actor, "delete_user", id, err) }()

	if err := requireRole(actor, domain.RoleSuperAdmin); err != nil {
		return err
	}

	target, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}
		return s.deleteOrphanIdentity(ctx, id)
	}
	if target.Protected() {
		return domain.ErrProtectedProfile
	}

	apps, err := s.applications.List(ctx, ports.ApplicationFilter{ApplicantID: id})
	if err != nil {
		return fmt.Errorf("list applications: %w", err)
	}
	if _, err := s.applications.DeleteByApplicant(ctx, id); err != nil {
		return fmt.Errorf("delete applications: %w", err)
	}
	for _, app := range apps {
		if app.ResumePath == "" {
			continue
		}
		if err := s.objects.Delete(ctx, app.ResumePath); err != nil && !errors.Is(err, domain.ErrObjectNotFound) {
			s.log.Warn().Err(err).Str("path", app.ResumePath).Msg("failed to delete resume of removed user")
		}
	}

	if _, err := s.jobs.ClearCreator(ctx, id); err != nil {
		return fmt.Errorf("detach job postings: %w", err)
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.identities.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// deleteOrphanIdentity removes an identity left behind by an interrupted sign
// up. Its profile would be provisioned on first login, so the identity gets
// the protection of the role it would be granted.
func (s *AdminService) deleteOrphanIdentity(ctx context.Context, id string) error {
	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.ErrProfileNotFound
		}
		return fmt.Errorf("lookup identity: %w", err)
	}
	if s.provisioner.CandidateRole(identity.Email) == domain.RoleSuperAdmin {
		return domain.ErrProtectedProfile
	}
	if err := s.identities.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.ErrProfileNotFound
		}
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func (s *AdminService) audit(actor domain.Principal, op, target string, err error) {
	level, outcome := zerolog.InfoLevel, "ok"
	if err != nil {
		level, outcome = zerolog.WarnLevel, "error"
	}
	s.log.WithLevel(level).Err(err).
		Str("audit", op).
		Str("actor_id", actor.ID).
		Str("actor_role", actor.Role.String()).
		Str("target", target).
		Str("outcome", outcome).
		Msg("privileged mutation")
}
