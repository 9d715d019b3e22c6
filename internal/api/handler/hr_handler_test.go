package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

func TestHRHandler_DownloadPDF(t *testing.T) {
	hr := &stubHRService{download: &ports.ResumeDownload{
		Object: &ports.Object{
			ReadCloser:  io.NopCloser(bytes.NewReader([]byte("%PDF-1.7 resume"))),
			Path:        "resumes/applications/a1_1.pdf",
			ContentType: "application/pdf",
			Size:        15,
		},
		FileName: "dela_cruz_jane_senior_go_engineer_application.pdf",
	}}
	h := NewHRHandler(hr, &stubApplicationService{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/hr/download-pdf?applicationId=a1", nil)
	c := withPrincipal(newTestEcho().NewContext(req, rec), hrActor)
	if err := h.DownloadPDF(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK || rec.Body.String() != "%PDF-1.7 resume" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if hr.gotAppID != "a1" || hr.gotPath != "" {
		t.Fatalf("unexpected lookup path=%q id=%q", hr.gotPath, hr.gotAppID)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	want := `attachment; filename=dela_cruz_jane_senior_go_engineer_application.pdf`
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHRHandler_DownloadPDF_Errors(t *testing.T) {
	h := NewHRHandler(&stubHRService{err: domain.ErrObjectNotFound}, &stubApplicationService{}, nil, zerolog.Nop())
	c := withPrincipal(newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/hr/download-pdf?path=x.pdf", nil), httptest.NewRecorder()), hrActor)
	if err := h.DownloadPDF(c); !errors.Is(err, domain.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestHRHandler_UpdateStatus(t *testing.T) {
	hr := &stubHRService{}
	h := NewHRHandler(hr, &stubApplicationService{}, nil, zerolog.Nop())

	c, rec := postJSON(newTestEcho(), "/api/hr/update-status", `{"applicationId":"a1","status":"Interview","comment":"call Monday"}`)
	withPrincipal(c, hrActor)
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if hr.updated.ApplicationID != "a1" || hr.updated.Status != "Interview" || hr.updated.Comment != "call Monday" {
		t.Fatalf("unexpected service input %+v", hr.updated)
	}

	c, _ = postJSON(newTestEcho(), "/api/hr/update-status", `{"status":"Hired"}`)
	withPrincipal(c, hrActor)
	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing id, got %v", err)
	}
}

func TestHRHandler_Applications(t *testing.T) {
	apps := &stubApplicationService{apps: []*domain.Application{{ID: "a1"}}}
	h := NewHRHandler(&stubHRService{}, apps, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/hr/applications?status=Hired&job_id=j1", nil)
	c := withPrincipal(newTestEcho().NewContext(req, rec), hrActor)
	if err := h.Applications(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if apps.filter.Status != domain.StatusHired || apps.filter.JobID != "j1" {
		t.Fatalf("unexpected filter %+v", apps.filter)
	}
}

func TestHRHandler_Realtime_NoFeed(t *testing.T) {
	h := NewHRHandler(&stubHRService{}, &stubApplicationService{}, nil, zerolog.Nop())
	c := withPrincipal(newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/hr/realtime", nil), httptest.NewRecorder()), hrActor)

	err := h.Realtime(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}
