package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const (
	// ImagePrefix is the object path prefix for publicly served images.
	ImagePrefix = "images/"
	// PublicImageRoute serves objects stored under ImagePrefix.
	PublicImageRoute = "/api/storage/images/"
)

// ObjectImages keeps job images in the private object store and serves them
// through PublicImageRoute. Used when no Cloudinary account is configured.
type ObjectImages struct {
	objects ports.ObjectStorage
}

func NewObjectImages(objects ports.ObjectStorage) *ObjectImages {
	return &ObjectImages{objects: objects}
}

func (s *ObjectImages) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	rel := path.Join(folder, path.Base(fileName))
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.objects.Put(ctx, ImagePrefix+rel, r, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return PublicImageRoute + rel, nil
}

func (s *ObjectImages) DeleteImage(ctx context.Context, fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, PublicImageRoute)
	if !ok || rel == "" {
		return fmt.Errorf("%w: %s", domain.ErrObjectNotFound, fileURL)
	}
	return s.objects.Delete(ctx, ImagePrefix+rel)
}

// ImagePath maps the wildcard part of PublicImageRoute back to an object
// path, rejecting traversal.
func ImagePath(rel string) (string, bool) {
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.Contains(rel, "..") {
		return "", false
	}
	return ImagePrefix + strings.TrimPrefix(clean, "/"), true
}
