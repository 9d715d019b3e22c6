package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// IdentityRepository persists credential records.
type IdentityRepository interface {
	// Create stores a new identity. Returns domain.ErrIdentityExists when the
	// email is already registered.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdateEmail(ctx context.Context, id, email string) error
	// Delete removes the identity. Deleting a missing identity returns
	// domain.ErrIdentityNotFound.
	Delete(ctx context.Context, id string) error
}
