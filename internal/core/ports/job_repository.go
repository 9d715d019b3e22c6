package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// JobFilter narrows job posting listings. Zero values mean "no filter".
type JobFilter struct {
	Status     domain.JobStatus
	Department string
	Search     string // partial match on title, department or description
}

// JobRepository persists job postings.
type JobRepository interface {
	Create(ctx context.Context, job *domain.JobPosting) error
	FindByID(ctx context.Context, id string) (*domain.JobPosting, error)
	List(ctx context.Context, filter JobFilter) ([]*domain.JobPosting, error)
	Update(ctx context.Context, job *domain.JobPosting) error
	Delete(ctx context.Context, id string) error
	// ClearCreator drops the created_by reference of every posting created by
	// profileID and returns how many postings were touched.
	ClearCreator(ctx context.Context, profileID string) (int64, error)
}
