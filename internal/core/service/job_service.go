package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const jobImageFolder = "jobs"

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// JobService manages job postings. Any signed in role may read; only HR and
// super admins may write.
type JobService struct {
	jobs         ports.JobRepository
	applications ports.ApplicationRepository
	images       ports.ImageStorage
	log          zerolog.Logger
	now          func() time.Time
}

// NewJobService wires job posting management. images may be nil, in which
// case AttachImage is unavailable.
func NewJobService(jobs ports.JobRepository, applications ports.ApplicationRepository, images ports.ImageStorage, log zerolog.Logger) *JobService {
	return &JobService{
		jobs:         jobs,
		applications: applications,
		images:       images,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *JobService) List(ctx context.Context, actor domain.Principal, filter ports.JobFilter) ([]*domain.JobPosting, error) {
	if err := requireRole(actor, domain.Roles()...); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidInput, filter.Status)
	}
	// Applicants only ever see open postings.
	if actor.Role == domain.RoleApplicant {
		filter.Status = domain.JobOpen
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Department = strings.TrimSpace(filter.Department)
	return s.jobs.List(ctx, filter)
}

func (s *JobService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.JobPosting, error) {
	if err := requireRole(actor, domain.Roles()...); err != nil {
		return nil, err
	}
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleApplicant && job.Status != domain.JobOpen {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (s *JobService) Create(ctx context.Context, actor domain.Principal, in ports.JobInput) (*domain.JobPosting, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}

	now := s.now()
	job := &domain.JobPosting{
		ID:        uuid.NewString(),
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyJobInput(job, in); err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().Str("job_id", job.ID).Str("actor_id", actor.ID).Msg("job posting created")
	return job, nil
}

func (s *JobService) Update(ctx context.Context, actor domain.Principal, id string, in ports.JobInput) (*domain.JobPosting, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = string(job.Status)
	}
	if err := applyJobInput(job, in); err != nil {
		return nil, err
	}
	job.UpdatedAt = s.now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().Str("job_id", job.ID).Str("actor_id", actor.ID).Msg("job posting updated")
	return job, nil
}

// Delete removes a posting that nobody applied to. Postings with
// applications have to be closed instead.
func (s *JobService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return err
	}

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.applications.Count(ctx, ports.ApplicationFilter{JobID: id})
	if err != nil {
		return fmt.Errorf("count applications: %w", err)
	}
	if n > 0 {
		return domain.ErrJobHasApplications
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	if job.ImageURL != "" && s.images != nil {
		if err := s.images.DeleteImage(ctx, job.ImageURL); err != nil {
			s.log.Warn().Err(err).Str("job_id", id).Msg("failed to delete job image")
		}
	}

	s.log.Info().Str("job_id", id).Str("actor_id", actor.ID).Msg("job posting deleted")
	return nil
}

func (s *JobService) AttachImage(ctx context.Context, actor domain.Principal, id string, img ports.ImageUpload) (*domain.JobPosting, error) {
	if err := requireRole(actor, domain.RoleHR, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}
	if img.Reader == nil {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	ext := strings.ToLower(path.Ext(img.FileName))
	if !allowedImageExt[ext] {
		return nil, fmt.Errorf("%w: image must be jpg, png, webp or gif", domain.ErrInvalidInput)
	}

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	name := fmt.Sprintf("%s_%d%s", job.ID, now.Unix(), ext)
	url, err := s.images.UploadImage(ctx, img.Reader, jobImageFolder, name)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	previous := job.ImageURL
	job.ImageURL = url
	job.UpdatedAt = now
	if err := s.jobs.Update(ctx, job); err != nil {
		if delErr := s.images.DeleteImage(ctx, url); delErr != nil {
			s.log.Warn().Err(delErr).Str("url", url).Msg("failed to remove orphaned job image")
		}
		return nil, err
	}
	if previous != "" {
		if err := s.images.DeleteImage(ctx, previous); err != nil {
			s.log.Warn().Err(err).Str("url", previous).Msg("failed to delete replaced job image")
		}
	}
	return job, nil
}

func applyJobInput(job *domain.JobPosting, in ports.JobInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	status := domain.JobStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status == "" {
		status = domain.JobOpen
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status must be open or closed", domain.ErrInvalidInput)
	}

	job.Title = title
	job.Description = sanitizeText(in.Description)
	job.Department = strings.TrimSpace(in.Department)
	job.Location = strings.TrimSpace(in.Location)
	job.EmploymentType = strings.TrimSpace(in.EmploymentType)
	job.Status = status
	return nil
}
