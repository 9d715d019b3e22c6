package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const objectBucket = "objects"

// ObjectStorage keeps resumes and fallback job images in GridFS, keyed by
// their object path.
type ObjectStorage struct {
	bucket *gridfs.Bucket
}

func NewObjectStorage(db *mongo.Database) (*ObjectStorage, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(objectBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &ObjectStorage{bucket: bucket}, nil
}

type objectMeta struct {
	ContentType string `bson:"content_type"`
}

func (s *ObjectStorage) Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(path, r, opts); err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	return nil
}

// Open returns the newest revision stored under path.
func (s *ObjectStorage) Open(ctx context.Context, path string) (*ports.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}

	file := ds.GetFile()
	var meta objectMeta
	if len(file.Metadata) > 0 {
		_ = bson.Unmarshal(file.Metadata, &meta)
	}
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}
	return &ports.Object{
		ReadCloser:  ds,
		Path:        path,
		ContentType: meta.ContentType,
		Size:        file.Length,
	}, nil
}

// Delete removes every revision stored under path.
func (s *ObjectStorage) Delete(ctx context.Context, path string) error {
	cur, err := s.bucket.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("find object: %w", err)
	}
	defer cur.Close(ctx)

	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cur.All(ctx, &files); err != nil {
		return fmt.Errorf("decode object ids: %w", err)
	}
	if len(files) == 0 {
		return domain.ErrObjectNotFound
	}
	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete object: %w", err)
		}
	}
	return nil
}
