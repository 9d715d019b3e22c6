package ports

import (
	"context"
	"io"

	"github.com/norsu/hrportal/internal/core/domain"
)

// JobInput carries the editable fields of a job posting.
type JobInput struct {
	Title          string
	Description    string
	Department     string
	Location       string
	EmploymentType string
	Status         string
}

// ImageUpload is a job image received from a multipart form.
type ImageUpload struct {
	Reader   io.Reader
	FileName string
}

// JobService manages job postings.
type JobService interface {
	List(ctx context.Context, actor domain.Principal, filter JobFilter) ([]*domain.JobPosting, error)
	Get(ctx context.Context, actor domain.Principal, id string) (*domain.JobPosting, error)
	Create(ctx context.Context, actor domain.Principal, in JobInput) (*domain.JobPosting, error)
	Update(ctx context.Context, actor domain.Principal, id string, in JobInput) (*domain.JobPosting, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
	AttachImage(ctx context.Context, actor domain.Principal, id string, img ImageUpload) (*domain.JobPosting, error)
}
