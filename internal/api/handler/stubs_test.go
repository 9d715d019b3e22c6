package handler

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/middleware"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

var (
	hrActor        = domain.Principal{ID: "hr-1", Email: "hr.jane@norsu.edu.ph", Role: domain.RoleHR}
	adminActor     = domain.Principal{ID: "admin-1", Email: "admin@norsu.edu.ph", Role: domain.RoleSuperAdmin}
	applicantActor = domain.Principal{ID: "app-1", Email: "juan@example.com", Role: domain.RoleApplicant}
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withPrincipal(c echo.Context, p domain.Principal) echo.Context {
	middleware.SetPrincipal(c, p)
	return c
}

type stubIdentityService struct {
	signUpFn  func(ctx context.Context, in ports.SignUpInput) (*domain.Identity, error)
	signInFn  func(ctx context.Context, email, password string) (string, *domain.Session, error)
	signOutFn func(ctx context.Context, token string) error
	sessions  map[string]*domain.Session
}

func (s *stubIdentityService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.Identity, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubIdentityService) SignIn(ctx context.Context, email, password string) (string, *domain.Session, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubIdentityService) SignOut(ctx context.Context, token string) error {
	return s.signOutFn(ctx, token)
}

func (s *stubIdentityService) Session(_ context.Context, token string) (*domain.Session, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, domain.ErrUnauthenticated
}

type stubResolver struct {
	principals map[string]domain.Principal
	err        error
}

func (r *stubResolver) Resolve(_ context.Context, s *domain.Session) (domain.Principal, error) {
	if r.err != nil {
		return domain.Principal{}, r.err
	}
	p, ok := r.principals[s.IdentityID]
	if !ok {
		return domain.Principal{}, domain.ErrResolutionFailed
	}
	return p, nil
}

type stubAdminService struct {
	stats   *ports.AdminStats
	users   []*domain.Profile
	created ports.CreateUserInput
	err     error
}

func (s *stubAdminService) Stats(context.Context, domain.Principal) (*ports.AdminStats, error) {
	return s.stats, s.err
}

func (s *stubAdminService) ListUsers(context.Context, domain.Principal) ([]*domain.Profile, error) {
	return s.users, s.err
}

func (s *stubAdminService) CreateUser(_ context.Context, _ domain.Principal, in ports.CreateUserInput) (*domain.Profile, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Profile{ID: "new-1", Email: in.Email, Role: domain.Role(in.Role)}, nil
}

func (s *stubAdminService) UpdateUser(_ context.Context, _ domain.Principal, id string, in ports.UpdateUserInput) (*domain.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := &domain.Profile{ID: id}
	if in.Email != nil {
		p.Email = *in.Email
	}
	return p, nil
}

func (s *stubAdminService) DeleteUser(context.Context, domain.Principal, string) error {
	return s.err
}

type stubHRService struct {
	download *ports.ResumeDownload
	gotPath  string
	gotAppID string
	updated  ports.UpdateStatusInput
	err      error
}

func (s *stubHRService) UpdateStatus(_ context.Context, _ domain.Principal, in ports.UpdateStatusInput) (*domain.Application, error) {
	s.updated = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Application{ID: in.ApplicationID, Status: domain.ApplicationStatus(in.Status), Comment: in.Comment}, nil
}

func (s *stubHRService) DownloadResume(_ context.Context, _ domain.Principal, path, applicationID string) (*ports.ResumeDownload, error) {
	s.gotPath, s.gotAppID = path, applicationID
	if s.err != nil {
		return nil, s.err
	}
	return s.download, nil
}

type stubApplicationService struct {
	submitted ports.SubmitApplicationInput
	resume    []byte
	apps      []*domain.Application
	filter    ports.ApplicationFilter
	link      string
	err       error
}

func (s *stubApplicationService) Submit(_ context.Context, actor domain.Principal, in ports.SubmitApplicationInput) (*domain.Application, error) {
	s.submitted = in
	if in.Resume != nil {
		s.resume, _ = io.ReadAll(in.Resume)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Application{ID: "a-1", JobID: in.JobID, ApplicantID: actor.ID, Status: domain.StatusForReview}, nil
}

func (s *stubApplicationService) ListMine(context.Context, domain.Principal) ([]*domain.Application, error) {
	return s.apps, s.err
}

func (s *stubApplicationService) List(_ context.Context, _ domain.Principal, f ports.ApplicationFilter) ([]*domain.Application, error) {
	s.filter = f
	return s.apps, s.err
}

func (s *stubApplicationService) ResumeURL(context.Context, domain.Principal, string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.link, time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC), nil
}

type stubJobService struct {
	jobs    []*domain.JobPosting
	filter  ports.JobFilter
	created ports.JobInput
	image   []byte
	err     error
}

func (s *stubJobService) List(_ context.Context, _ domain.Principal, f ports.JobFilter) ([]*domain.JobPosting, error) {
	s.filter = f
	return s.jobs, s.err
}

func (s *stubJobService) Get(_ context.Context, _ domain.Principal, id string) (*domain.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.JobPosting{ID: id}, nil
}

func (s *stubJobService) Create(_ context.Context, actor domain.Principal, in ports.JobInput) (*domain.JobPosting, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.JobPosting{ID: "j-1", Title: in.Title, Status: domain.JobOpen, CreatedBy: actor.ID}, nil
}

func (s *stubJobService) Update(_ context.Context, _ domain.Principal, id string, in ports.JobInput) (*domain.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.JobPosting{ID: id, Title: in.Title}, nil
}

func (s *stubJobService) Delete(context.Context, domain.Principal, string) error {
	return s.err
}

func (s *stubJobService) AttachImage(_ context.Context, _ domain.Principal, id string, img ports.ImageUpload) (*domain.JobPosting, error) {
	s.image, _ = io.ReadAll(img.Reader)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.JobPosting{ID: id, ImageURL: "/api/storage/images/jobs/" + img.FileName}, nil
}

type stubObjects struct {
	data map[string][]byte
}

func (s *stubObjects) Put(_ context.Context, p string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.data[p] = b
	return nil
}

func (s *stubObjects) Open(_ context.Context, p string) (*ports.Object, error) {
	b, ok := s.data[p]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &ports.Object{ReadCloser: io.NopCloser(bytes.NewReader(b)), Path: p, ContentType: "application/pdf", Size: int64(len(b))}, nil
}

func (s *stubObjects) Delete(_ context.Context, p string) error {
	delete(s.data, p)
	return nil
}

type stubSigner struct {
	grants map[string]string
}

func (s *stubSigner) Sign(p string) (string, time.Time, error) {
	return "tok-" + p, time.Now().Add(time.Minute), nil
}

func (s *stubSigner) Verify(token string) (string, error) {
	p, ok := s.grants[token]
	if !ok {
		return "", domain.ErrForbidden
	}
	return p, nil
}
