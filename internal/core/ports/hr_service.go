package ports

import (
	"context"

	"github.com/norsu/hrportal/internal/core/domain"
)

// UpdateStatusInput tags an application with a review status.
type UpdateStatusInput struct {
	ApplicationID string
	Status        string
	Comment       string
}

// ResumeDownload is a resume ready to stream, with the filename offered to
// the browser.
type ResumeDownload struct {
	*Object
	FileName string
}

// HRService covers the HR review workflow.
type HRService interface {
	UpdateStatus(ctx context.Context, actor domain.Principal, in UpdateStatusInput) (*domain.Application, error)
	// DownloadResume resolves by applicationID when given, else by path.
	DownloadResume(ctx context.Context, actor domain.Principal, path, applicationID string) (*ResumeDownload, error)
}
