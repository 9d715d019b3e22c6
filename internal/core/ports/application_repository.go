package ports

import (
	"context"
	"time"

	"github.com/norsu/hrportal/internal/core/domain"
)

// ApplicationFilter narrows application listings. Zero values mean "no filter".
type ApplicationFilter struct {
	ApplicantID string
	JobID       string
	Status      domain.ApplicationStatus
}

// ApplicationRepository persists applications.
type ApplicationRepository interface {
	// Create stores the application. Returns domain.ErrDuplicateApplication
	// when the applicant already applied to the job.
	Create(ctx context.Context, app *domain.Application) error
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	FindByResumePath(ctx context.Context, path string) (*domain.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*domain.Application, error)
	Count(ctx context.Context, filter ApplicationFilter) (int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, comment string, at time.Time) (*domain.Application, error)
	// DeleteByApplicant removes every application owned by applicantID.
	DeleteByApplicant(ctx context.Context, applicantID string) (int64, error)
}
