package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// ProfileRepository persists the profiles relation.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	// Insert creates the profile and returns the row as persisted. The profile
	// id is the primary key; a second insert for the same id returns
	// domain.ErrProfileExists.
	Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
	// Count returns the number of profiles, restricted to role when non-empty.
	Count(ctx context.Context, role domain.Role) (int64, error)
}
