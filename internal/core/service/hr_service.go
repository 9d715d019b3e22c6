package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const (
	maxCommentLength  = 2000
	genericResumeName = "application.pdf"
	resumeFileSuffix  = "_application.pdf"
)

// HRService implements the HR review workflow.
type HRService struct {
	applications ports.ApplicationRepository
	jobs         ports.JobRepository
	objects      ports.ObjectStorage
	feed         ports.ChangeFeed
	log          zerolog.Logger
	now          func() time.Time
}

// NewHRService wires the review workflow. feed may be nil.
func NewHRService(
	applications ports.ApplicationRepository,
	jobs ports.JobRepository,
	objects ports.ObjectStorage,
	feed ports.ChangeFeed,
	log zerolog.Logger,
) *HRService {
	return &HRService{
		applications: applications,
		jobs:         jobs,
		objects:      objects,
		feed:         feed,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *HRService) UpdateStatus(ctx context.Context, actor domain.Principal, in ports.UpdateStatusInput) (*domain.Application, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ApplicationID) == "" {
		return nil, fmt.Errorf("%w: applicationId is required", domain.ErrInvalidInput)
	}
	status, err := domain.ParseApplicationStatus(in.Status)
	if err != nil {
		return nil, err
	}
	comment := sanitizeText(in.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", domain.ErrInvalidInput, maxCommentLength)
	}

	now := s.now()
	app, err := s.applications.UpdateStatus(ctx, in.ApplicationID, status, comment, now)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("application_id", app.ID).
		Str("status", string(status)).
		Str("actor_id", actor.ID).
		Msg("application status updated")

	publish(ctx, s.feed, s.log, domain.ChangeEvent{
		Type:          domain.EventApplicationStatusChanged,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		Status:        status,
		ActorID:       actor.ID,
		OccurredAt:    now,
	})
	return app, nil
}

// DownloadResume opens the stored resume. The offered filename is
// {lastname_firstname}_{jobtitle}_application.pdf when the application and its
// job can be resolved, otherwise a generic name.
func (s *HRService) DownloadResume(ctx context.Context, actor domain.Principal, path, applicationID string) (*ports.ResumeDownload, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	path, applicationID = strings.TrimSpace(path), strings.TrimSpace(applicationID)
	if path == "" && applicationID == "" {
		return nil, fmt.Errorf("%w: path or applicationId is required", domain.ErrInvalidInput)
	}

	var app *domain.Application
	if applicationID != "" {
		found, err := s.applications.FindByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		app = found
		path = found.ResumePath
	} else {
		found, err := s.applications.FindByResumePath(ctx, path)
		switch {
		case err == nil:
			app = found
		case !errors.Is(err, domain.ErrApplicationNotFound):
			return nil, err
		}
	}
	if path == "" {
		return nil, domain.ErrObjectNotFound
	}

	obj, err := s.objects.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &ports.ResumeDownload{Object: obj, FileName: s.resumeFileName(ctx, app)}, nil
}

func (s *HRService) resumeFileName(ctx context.Context, app *domain.Application) string {
	if app == nil {
		return genericResumeName
	}
	job, err := s.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		if !errors.Is(err, domain.ErrJobNotFound) {
			s.log.Warn().Err(err).Str("job_id", app.JobID).Msg("job lookup for resume filename failed")
		}
		return genericResumeName
	}
	name, title := slug(app.LastName+" "+app.FirstName), slug(job.Title)
	if name == "" || title == "" {
		return genericResumeName
	}
	return name + "_" + title + resumeFileSuffix
}

// publish pushes an event to the change feed. Delivery is best effort.
func publish(ctx context.Context, feed ports.ChangeFeed, log zerolog.Logger, ev domain.ChangeEvent) {
	if feed == nil {
		return
	}
	if err := feed.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Str("application_id", ev.ApplicationID).Msg("failed to publish change event")
	}
}
