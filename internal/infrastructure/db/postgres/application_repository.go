package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) scoped(ctx context.Context, f ports.ApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&applicationModel{})
	if f.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.ApplicantID)
	}
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	return q
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := newApplicationModel(a)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return domain.ErrDuplicateApplication
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ApplicationRepository) FindByResumePath(ctx context.Context, path string) (*domain.Application, error) {
	return r.first(ctx, "resume_path = ?", path)
}

func (r *ApplicationRepository) first(ctx context.Context, query string, arg any) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m applicationModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ApplicationRepository) List(ctx context.Context, f ports.ApplicationFilter) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []applicationModel
	if err := r.scoped(ctx, f).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	out := make([]*domain.Application, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ApplicationRepository) Count(ctx context.Context, f ports.ApplicationFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.scoped(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, comment string, at time.Time) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m applicationModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&applicationModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":     string(status),
			"comment":    comment,
			"updated_at": at,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrApplicationNotFound
		}
		return tx.Where("id = ?", id).First(&m).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ApplicationRepository) DeleteByApplicant(ctx context.Context, applicantID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID).Delete(&applicationModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete applications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
