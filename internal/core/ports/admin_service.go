package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// AdminStats is the super admin dashboard summary.
type AdminStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalApplications int64 `json:"totalApplications"`
	TotalHRStaff      int64 `json:"totalHRStaff"`
	PendingReviews    int64 `json:"pendingReviews"`
}

// CreateUserInput carries a privileged user creation request.
type CreateUserInput struct {
	Email    string
	Password string
	Phone    string
	Role     string
}

// UpdateUserInput lists optional profile fields; nil means unchanged.
type UpdateUserInput struct {
	Email *string
	Phone *string
	Role  *string
}

// AdminService performs privileged user management. Every method re-checks
// that actor is a super_admin.
type AdminService interface {
	Stats(ctx context.Context, actor domain.Principal) (*AdminStats, error)
	ListUsers(ctx context.Context, actor domain.Principal) ([]*domain.Profile, error)
	CreateUser(ctx context.Context, actor domain.Principal, in CreateUserInput) (*domain.Profile, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id string, in UpdateUserInput) (*domain.Profile, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id string) error
}
