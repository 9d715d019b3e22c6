package service

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

type applicationFixture struct {
	svc          *ApplicationService
	applications *stubApplicationRepo
	jobs         *stubJobRepo
	profiles     *stubProfileRepo
	objects      *stubObjectStorage
	signer       *URLSigner
	feed         *stubFeed
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		applications: newStubApplicationRepo(),
		jobs:         newStubJobRepo(),
		profiles:     newStubProfileRepo(),
		objects:      newStubObjectStorage(),
		signer:       NewURLSigner("secret", time.Minute),
		feed:         &stubFeed{},
	}
	f.svc = NewApplicationService(f.applications, f.jobs, f.profiles, f.objects, f.signer, f.feed, 64, zerolog.Nop())
	f.svc.now = fixedClock
	f.jobs.put(domain.JobPosting{ID: "j1", Title: "Backend Engineer", Status: domain.JobOpen})
	f.jobs.put(domain.JobPosting{ID: "j2", Title: "Closed Role", Status: domain.JobClosed})
	f.profiles.put(domain.Profile{ID: applicant.ID, Email: applicant.Email, Phone: "0917", Role: domain.RoleApplicant})
	return f
}

func validSubmission() ports.SubmitApplicationInput {
	return ports.SubmitApplicationInput{
		JobID:     "j1",
		FirstName: "Jane",
		LastName:  "Doe",
		Resume:    strings.NewReader("%PDF-1.7 small resume"),
	}
}

func TestApplicationService_Submit(t *testing.T) {
	f := newApplicationFixture()

	app, err := f.svc.Submit(context.Background(), applicant, validSubmission())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if app.Status != domain.StatusForReview || app.ApplicantID != applicant.ID || app.Email != applicant.Email {
		t.Fatalf("unexpected application %+v", app)
	}
	if app.Phone != "0917" {
		t.Fatalf("expected phone from profile, got %q", app.Phone)
	}
	if !strings.HasPrefix(app.ResumePath, "resumes/applications/") || !strings.HasSuffix(app.ResumePath, ".pdf") {
		t.Fatalf("unexpected resume path %q", app.ResumePath)
	}
	if !bytes.Equal(f.objects.objects[app.ResumePath], []byte("%PDF-1.7 small resume")) {
		t.Fatal("resume not stored")
	}
	if len(f.feed.events) != 1 || f.feed.events[0].Type != domain.EventApplicationSubmitted {
		t.Fatalf("expected submitted event, got %+v", f.feed.events)
	}
}

func TestApplicationService_Submit_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		actor  domain.Principal
		mutate func(in *ports.SubmitApplicationInput)
		want   error
	}{
		{"hr cannot apply", hrUser, func(*ports.SubmitApplicationInput) {}, domain.ErrForbidden},
		{"missing job", applicant, func(in *ports.SubmitApplicationInput) { in.JobID = "" }, domain.ErrInvalidInput},
		{"missing name", applicant, func(in *ports.SubmitApplicationInput) { in.FirstName = "<b></b>" }, domain.ErrInvalidInput},
		{"unknown job", applicant, func(in *ports.SubmitApplicationInput) { in.JobID = "nope" }, domain.ErrJobNotFound},
		{"closed job", applicant, func(in *ports.SubmitApplicationInput) { in.JobID = "j2" }, domain.ErrJobClosed},
		{"no resume", applicant, func(in *ports.SubmitApplicationInput) { in.Resume = nil }, domain.ErrInvalidFile},
		{"not a pdf", applicant, func(in *ports.SubmitApplicationInput) { in.Resume = strings.NewReader("PK\x03\x04 zip") }, domain.ErrInvalidFile},
		{"too large", applicant, func(in *ports.SubmitApplicationInput) {
			in.Resume = strings.NewReader("%PDF-" + strings.Repeat("x", 64))
		}, domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newApplicationFixture()
			in := validSubmission()
			tt.mutate(&in)
			if _, err := f.svc.Submit(context.Background(), tt.actor, in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.objects.objects) != 0 {
				t.Fatalf("rejected submission left %d stored objects", len(f.objects.objects))
			}
		})
	}
}

func TestApplicationService_Submit_Duplicate(t *testing.T) {
	f := newApplicationFixture()

	if _, err := f.svc.Submit(context.Background(), applicant, validSubmission()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), applicant, validSubmission()); !errors.Is(err, domain.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
	if len(f.objects.objects) != 1 {
		t.Fatalf("expected one stored resume, got %d", len(f.objects.objects))
	}
}

func TestApplicationService_Submit_CreateFailureRemovesResume(t *testing.T) {
	f := newApplicationFixture()
	f.applications.createErr = errors.New("insert failed")

	if _, err := f.svc.Submit(context.Background(), applicant, validSubmission()); err == nil {
		t.Fatal("expected error")
	}
	if len(f.objects.objects) != 0 || len(f.objects.deleted) != 1 {
		t.Fatalf("expected uploaded resume removed, objects=%d deleted=%v", len(f.objects.objects), f.objects.deleted)
	}
	if len(f.feed.events) != 0 {
		t.Fatal("failed submission must not publish")
	}
}

func TestApplicationService_ListMineAndList(t *testing.T) {
	f := newApplicationFixture()
	f.applications.put(domain.Application{ID: "a1", ApplicantID: applicant.ID, JobID: "j1", Status: domain.StatusForReview})
	f.applications.put(domain.Application{ID: "a2", ApplicantID: "someone-else", JobID: "j1", Status: domain.StatusHired})

	mine, err := f.svc.ListMine(context.Background(), applicant)
	if err != nil {
		t.Fatalf("ListMine returned error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "a1" {
		t.Fatalf("unexpected applications %+v", mine)
	}

	if _, err := f.svc.List(context.Background(), applicant, ports.ApplicationFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	hired, err := f.svc.List(context.Background(), hrUser, ports.ApplicationFilter{Status: domain.StatusHired})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(hired) != 1 || hired[0].ID != "a2" {
		t.Fatalf("unexpected filtered applications %+v", hired)
	}
	if _, err := f.svc.List(context.Background(), hrUser, ports.ApplicationFilter{Status: "Pending"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestApplicationService_ResumeURL(t *testing.T) {
	f := newApplicationFixture()
	f.applications.put(domain.Application{ID: "a1", ApplicantID: applicant.ID, JobID: "j1", ResumePath: "resumes/applications/a1.pdf"})
	f.applications.put(domain.Application{ID: "a2", ApplicantID: "someone-else", JobID: "j1", ResumePath: "resumes/applications/a2.pdf"})

	link, expires, err := f.svc.ResumeURL(context.Background(), applicant, "a1")
	if err != nil {
		t.Fatalf("ResumeURL returned error: %v", err)
	}
	if expires.IsZero() {
		t.Fatal("expected expiry")
	}
	u, err := url.Parse(link)
	if err != nil || u.Path != signedDownloadPath {
		t.Fatalf("unexpected link %q", link)
	}
	path, err := f.signer.Verify(u.Query().Get("token"))
	if err != nil || path != "resumes/applications/a1.pdf" {
		t.Fatalf("token does not grant the resume: path=%q err=%v", path, err)
	}

	if _, _, err := f.svc.ResumeURL(context.Background(), applicant, "a2"); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound for foreign application, got %v", err)
	}
}
