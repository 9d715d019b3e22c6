package domain

import "errors"

// Authentication and role resolution.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrResolutionFailed   = errors.New("authentication failed: role could not be resolved")
	ErrProvisioningFailed = errors.New("authentication failed: profile could not be provisioned")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Authorization.
var (
	ErrForbidden        = errors.New("access forbidden")
	ErrProtectedProfile = errors.New("super_admin profiles cannot be modified")
)

// Identities and profiles.
var (
	ErrIdentityExists   = errors.New("identity already exists")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrProfileExists    = errors.New("profile already exists")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidRole      = errors.New("invalid role")
)

// Jobs, applications and stored objects.
var (
	ErrJobNotFound          = errors.New("job posting not found")
	ErrJobClosed            = errors.New("job posting is closed")
	ErrJobHasApplications   = errors.New("job posting has applications; close it instead")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("application already submitted")
	ErrInvalidStatus        = errors.New("invalid application status")
	ErrObjectNotFound       = errors.New("stored object not found")
	ErrInvalidFile          = errors.New("file must be a PDF document")
	ErrFileTooLarge         = errors.New("file too large")
)

// ErrInvalidInput marks request validation failures.
var ErrInvalidInput = errors.New("invalid input")
