package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const (
	defaultMaxResumeBytes = 5 << 20
	signedDownloadPath    = "/api/storage/signed"
)

var pdfMagic = []byte("%PDF-")

// ApplicationService handles applicant submissions.
type ApplicationService struct {
	applications   ports.ApplicationRepository
	jobs           ports.JobRepository
	profiles       ports.ProfileRepository
	objects        ports.ObjectStorage
	signer         ports.URLSigner
	feed           ports.ChangeFeed
	maxResumeBytes int64
	log            zerolog.Logger
	now            func() time.Time
}

// NewApplicationService wires applicant submissions. feed may be nil and a
// non-positive maxResumeBytes selects the 5 MiB default.
func NewApplicationService(
	applications ports.ApplicationRepository,
	jobs ports.JobRepository,
	profiles ports.ProfileRepository,
	objects ports.ObjectStorage,
	signer ports.URLSigner,
	feed ports.ChangeFeed,
	maxResumeBytes int64,
	log zerolog.Logger,
) *ApplicationService {
	if maxResumeBytes <= 0 {
		maxResumeBytes = defaultMaxResumeBytes
	}
	return &ApplicationService{
		applications:   applications,
		jobs:           jobs,
		profiles:       profiles,
		objects:        objects,
		signer:         signer,
		feed:           feed,
		maxResumeBytes: maxResumeBytes,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *ApplicationService) Submit(ctx context.Context, actor domain.Principal, in ports.SubmitApplicationInput) (*domain.Application, error) {
	if err := requireRole(actor, domain.RoleApplicant); err != nil {
		return nil, err
	}

	first, last := sanitizeText(in.FirstName), sanitizeText(in.LastName)
	switch {
	case strings.TrimSpace(in.JobID) == "":
		return nil, fmt.Errorf("%w: jobId is required", domain.ErrInvalidInput)
	case first == "" || last == "":
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	case in.Resume == nil:
		return nil, fmt.Errorf("%w: resume is required", domain.ErrInvalidFile)
	}

	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobOpen {
		return nil, domain.ErrJobClosed
	}

	n, err := s.applications.Count(ctx, ports.ApplicationFilter{ApplicantID: actor.ID, JobID: job.ID})
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	if n > 0 {
		return nil, domain.ErrDuplicateApplication
	}

	resume, err := s.readResume(in.Resume)
	if err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(in.Phone)
	if phone == "" && s.profiles != nil {
		if profile, err := s.profiles.FindByID(ctx, actor.ID); err == nil {
			phone = profile.Phone
		}
	}

	now := s.now()
	path := objectPath("resumes", "applications", "pdf", now)
	if err := s.objects.Put(ctx, path, bytes.NewReader(resume), "application/pdf"); err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		ApplicantID: actor.ID,
		FirstName:   first,
		LastName:    last,
		Email:       actor.Email,
		Phone:       phone,
		ResumePath:  path,
		Status:      domain.StatusForReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if delErr := s.objects.Delete(ctx, path); delErr != nil {
			s.log.Warn().Err(delErr).Str("path", path).Msg("failed to remove resume of rejected application")
		}
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID).Str("job_id", job.ID).Msg("application submitted")
	publish(ctx, s.feed, s.log, domain.ChangeEvent{
		Type:          domain.EventApplicationSubmitted,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		Status:        app.Status,
		ActorID:       actor.ID,
		OccurredAt:    now,
	})
	return app, nil
}

// readResume buffers at most maxResumeBytes and checks the PDF signature.
func (s *ApplicationService) readResume(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxResumeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > s.maxResumeBytes {
		return nil, domain.ErrFileTooLarge
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, domain.ErrInvalidFile
	}
	return data, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Application, error) {
	if err := requireRole(actor, domain.RoleApplicant); err != nil {
		return nil, err
	}
	return s.applications.List(ctx, ports.ApplicationFilter{ApplicantID: actor.ID})
}

func (s *ApplicationService) List(ctx context.Context, actor domain.Principal, filter ports.ApplicationFilter) ([]*domain.Application, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if filter.Status != "" {
		if _, err := domain.ParseApplicationStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	return s.applications.List(ctx, filter)
}

// ResumeURL signs a download link for the caller's own resume. Applications
// of other applicants are reported as missing.
func (s *ApplicationService) ResumeURL(ctx context.Context, actor domain.Principal, id string) (string, time.Time, error) {
	if err := requireRole(actor, domain.RoleApplicant); err != nil {
		return "", time.Time{}, err
	}
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if app.ApplicantID != actor.ID || app.ResumePath == "" {
		return "", time.Time{}, domain.ErrApplicationNotFound
	}
	token, expires, err := s.signer.Sign(app.ResumePath)
	if err != nil {
		return "", time.Time{}, err
	}
	return signedDownloadPath + "?token=" + url.QueryEscape(token), expires, nil
}
