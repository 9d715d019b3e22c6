package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// ObjectStorage keeps stored files in a bytea table. Resumes are capped at a
// few MiB so rows stay small.
type ObjectStorage struct {
	db *gorm.DB
}

func NewObjectStorage(db *gorm.DB) *ObjectStorage {
	return &ObjectStorage{db: db}
}

func (s *ObjectStorage) Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := objectModel{
		Path:        path,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

func (s *ObjectStorage) Open(ctx context.Context, path string) (*ports.Object, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m objectModel
	if err := s.db.WithContext(ctx).Where("path = ?", path).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return &ports.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(m.Data)),
		Path:        m.Path,
		ContentType: m.ContentType,
		Size:        m.Size,
	}, nil
}

func (s *ObjectStorage) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := s.db.WithContext(ctx).Where("path = ?", path).Delete(&objectModel{})
	if res.Error != nil {
		return fmt.Errorf("delete object: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrObjectNotFound
	}
	return nil
}
