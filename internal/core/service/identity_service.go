package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const (
	sessionAudience   = "hrportal-session"
	minPasswordLength = 6
)

// IdentityConfig holds session signing settings.
type IdentityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// IdentityService implements sign up, sign in, sign out and session lookup.
type IdentityService struct {
	identities  ports.IdentityRepository
	profiles    ports.ProfileRepository
	provisioner *Provisioner
	sessions    ports.SessionStore
	limiter     ports.RateLimiter
	jwtSecret   []byte
	tokenTTL    time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewIdentityService wires the identity store. sessions and limiter may be
// nil, in which case sign out only discards the client token and sign in is
// not rate limited.
func NewIdentityService(
	identities ports.IdentityRepository,
	profiles ports.ProfileRepository,
	provisioner *Provisioner,
	sessions ports.SessionStore,
	limiter ports.RateLimiter,
	cfg IdentityConfig,
	log zerolog.Logger,
) *IdentityService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &IdentityService{
		identities:  identities,
		profiles:    profiles,
		provisioner: provisioner,
		sessions:    sessions,
		limiter:     limiter,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.TokenTTL,
		log:         log,
		now:         time.Now,
	}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignUp creates an identity and tries to create its profile right away. A
// failed profile insert is not fatal: the role resolver provisions it on the
// first sign in.
func (s *IdentityService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.Identity, error) {
	email, err := normalizeEmail(in.Email)
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

	now := s.now().UTC()
	identity, err := s.identities.Create(ctx, &domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.profiles.Insert(ctx, &domain.Profile{
		ID:        identity.ID,
		Email:     identity.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Role:      s.provisioner.CandidateRole(identity.Email),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil && !errors.Is(err, domain.ErrProfileExists) {
		s.log.Warn().Err(err).Str("identity_id", identity.ID).Msg("profile insert at sign up failed, deferring to first login")
	}

	s.log.Info().Str("identity_id", identity.ID).Msg("identity created")
	return identity, nil
}

// SignIn checks credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (string, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	limitKey := "login:" + email
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, limitKey)
		if err != nil {
			s.log.Warn().Err(err).Msg("login rate limiter unavailable")
		} else if !allowed {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, limitKey); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login attempts")
		}
	}

	token, session, err := s.generateToken(identity)
	if err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *IdentityService) SignOut(ctx context.Context, token string) error {
	session, err := s.Session(ctx, token)
	if err != nil {
		return err
	}
	if s.sessions == nil {
		return nil
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.sessions.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Session validates token and returns the session it encodes.
func (s *IdentityService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	if s.sessions != nil {
		revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("session revocation check failed")
			return nil, fmt.Errorf("%w: revocation check: %w", domain.ErrUnauthenticated, err)
		}
		if revoked {
			return nil, domain.ErrSessionRevoked
		}
	}

	session := &domain.Session{
		IdentityID: claims.Subject,
		Email:      claims.Email,
		TokenID:    claims.ID,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// generateToken signs a session token. The role is deliberately absent: it is
// re-derived from the profile on every request.
func (s *IdentityService) generateToken(identity *domain.Identity) (string, *domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		IdentityID: identity.ID,
		Email:      identity.Email,
		TokenID:    uuid.NewString(),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.tokenTTL),
	}

	claims := sessionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.IdentityID,
			ID:        session.TokenID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email must be a valid address", domain.ErrInvalidInput)
	}
	return email, nil
}
