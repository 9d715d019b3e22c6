package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryImages hosts job images on Cloudinary. Every folder is nested
// under a project root folder.
type CloudinaryImages struct {
	cld  *cloudinary.Cloudinary
	root string
}

// NewCloudinaryImages builds the client from a cloudinary:// URL.
func NewCloudinaryImages(cloudinaryURL, rootFolder string) (*CloudinaryImages, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("cloudinary url is empty")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryImages{cld: cld, root: strings.Trim(rootFolder, "/")}, nil
}

func (s *CloudinaryImages) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	params := uploader.UploadParams{
		Folder:         path.Join(s.root, folder),
		PublicID:       strings.TrimSuffix(fileName, path.Ext(fileName)),
		Overwrite:      api.Bool(true),
		UniqueFilename: api.Bool(false),
		Transformation: "q_auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload image: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("upload image: empty secure url")
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryImages) DeleteImage(ctx context.Context, fileURL string) error {
	publicID := publicIDFromURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("no public id in %q", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("destroy image: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("destroy image: result %q", resp.Result)
	}
	return nil
}

// publicIDFromURL turns a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v12/hrportal/jobs/a.png into
// hrportal/jobs/a.
func publicIDFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p != "upload" {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 0 && isVersion(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return ""
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id))
	}
	return ""
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, c := range seg[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
