package ports

import (
	"context"
	"io"
)

// Object is an open handle on a stored file. Callers must Close it.
type Object struct {
	io.ReadCloser
	Path        string
	ContentType string
	Size        int64
}

// ObjectStorage stores resumes and other private files by path.
type ObjectStorage interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Open returns domain.ErrObjectNotFound when nothing is stored at path.
	Open(ctx context.Context, path string) (*Object, error)
	Delete(ctx context.Context, path string) error
}

// ImageStorage hosts public job images and returns their URL.
type ImageStorage interface {
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	DeleteImage(ctx context.Context, fileURL string) error
}
