package ports

import (
	"context"
	"io"
	"time"

	"github.com/norsu/hrportal/internal/core/domain"
)

// SubmitApplicationInput carries an applicant's submission and resume.
type SubmitApplicationInput struct {
	JobID     string
	FirstName string
	LastName  string
	Phone     string
	Resume    io.Reader
}

// ApplicationService covers applicant submissions and listings.
type ApplicationService interface {
	Submit(ctx context.Context, actor domain.Principal, in SubmitApplicationInput) (*domain.Application, error)
	ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Application, error)
	List(ctx context.Context, actor domain.Principal, filter ApplicationFilter) ([]*domain.Application, error)
	// ResumeURL issues a short-lived signed download link for the applicant's
	// own resume.
	ResumeURL(ctx context.Context, actor domain.Principal, id string) (string, time.Time, error)
}

// URLSigner issues and verifies signed download tokens for stored objects.
type URLSigner interface {
	Sign(path string) (string, time.Time, error)
	Verify(token string) (string, error)
}
