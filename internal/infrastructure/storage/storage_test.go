package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

type memObjects struct {
	data  map[string][]byte
	types map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{data: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) Put(_ context.Context, p string, r io.Reader, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data[p] = b
	m.types[p] = contentType
	return nil
}

func (m *memObjects) Open(_ context.Context, p string) (*ports.Object, error) {
	b, ok := m.data[p]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &ports.Object{ReadCloser: io.NopCloser(bytes.NewReader(b)), Path: p, ContentType: m.types[p], Size: int64(len(b))}, nil
}

func (m *memObjects) Delete(_ context.Context, p string) error {
	if _, ok := m.data[p]; !ok {
		return domain.ErrObjectNotFound
	}
	delete(m.data, p)
	return nil
}

func TestPublicIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/hrportal/jobs/j1_1.png": "hrportal/jobs/j1_1",
		"https://res.cloudinary.com/demo/image/upload/hrportal/jobs/j1_1.webp":      "hrportal/jobs/j1_1",
		"https://res.cloudinary.com/demo/image/upload/vacancies/banner.jpg":         "vacancies/banner",
		"https://res.cloudinary.com/demo/image/upload/":                             "",
		"https://example.com/static/a.png":                                          "",
	}
	for in, want := range tests {
		if got := publicIDFromURL(in); got != want {
			t.Errorf("publicIDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectImages_UploadAndDelete(t *testing.T) {
	objects := newMemObjects()
	images := NewObjectImages(objects)

	u, err := images.UploadImage(context.Background(), strings.NewReader("png"), "jobs", "j1_1.png")
	if err != nil {
		t.Fatalf("UploadImage returned error: %v", err)
	}
	if u != "/api/storage/images/jobs/j1_1.png" {
		t.Fatalf("unexpected url %q", u)
	}
	if objects.types["images/jobs/j1_1.png"] != "image/png" {
		t.Fatalf("unexpected content type %q", objects.types["images/jobs/j1_1.png"])
	}

	if err := images.DeleteImage(context.Background(), u); err != nil {
		t.Fatalf("DeleteImage returned error: %v", err)
	}
	if len(objects.data) != 0 {
		t.Fatal("image not deleted")
	}
	if err := images.DeleteImage(context.Background(), "https://cdn.example.com/x.png"); !errors.Is(err, domain.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestImagePath(t *testing.T) {
	if p, ok := ImagePath("jobs/j1_1.png"); !ok || p != "images/jobs/j1_1.png" {
		t.Fatalf("ImagePath = %q, %v", p, ok)
	}
	for _, bad := range []string{"", "../resumes/applications/a.pdf", "jobs/../../x"} {
		if _, ok := ImagePath(bad); ok {
			t.Errorf("ImagePath(%q) should be rejected", bad)
		}
	}
}
