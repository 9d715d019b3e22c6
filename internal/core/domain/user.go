package domain

import "time"

// Identity is a credential record in the identity store.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the decoded, validated form of a session token.
type Session struct {
	IdentityID string
	Email      string
	TokenID    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Profile holds a user's role and contact details, one per Identity.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal converts the profile into the trusted triple.
func (p *Profile) Principal() Principal {
	return Principal{ID: p.ID, Email: p.Email, Role: p.Role}
}

// Protected reports whether the profile is shielded from API mutation.
func (p *Profile) Protected() bool {
	return p.Role == RoleSuperAdmin
}

// ProfilePatch lists the optional fields a privileged update may change.
type ProfilePatch struct {
	Email *string
	Phone *string
	Role  *Role
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.Phone == nil && p.Role == nil
}
