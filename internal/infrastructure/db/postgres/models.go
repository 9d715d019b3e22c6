package postgres

import (
	"time"

	"github.com/norsu/hrportal/internal/core/domain"
)

type identityModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (identityModel) TableName() string { return "identities" }

func (m identityModel) toDomain() *domain.Identity {
	return &domain.Identity{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt.UTC()}
}

type profileModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"not null"`
	Phone     string
	Role      string `gorm:"index;not null;default:applicant"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileModel) TableName() string { return "profiles" }

func (m profileModel) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:        m.ID,
		Email:     m.Email,
		Phone:     m.Phone,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type jobModel struct {
	ID             string `gorm:"primaryKey;size:36"`
	Title          string `gorm:"not null"`
	Description    string `gorm:"type:text"`
	Department     string `gorm:"index"`
	Location       string
	EmploymentType string
	Status         string  `gorm:"index;not null"`
	ImageURL       string
	CreatedBy      *string `gorm:"index;size:36"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (jobModel) TableName() string { return "job_postings" }

func newJobModel(j *domain.JobPosting) jobModel {
	m := jobModel{
		ID:             j.ID,
		Title:          j.Title,
		Description:    j.Description,
		Department:     j.Department,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		Status:         string(j.Status),
		ImageURL:       j.ImageURL,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if j.CreatedBy != "" {
		createdBy := j.CreatedBy
		m.CreatedBy = &createdBy
	}
	return m
}

func (m jobModel) toDomain() *domain.JobPosting {
	j := &domain.JobPosting{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Department:     m.Department,
		Location:       m.Location,
		EmploymentType: m.EmploymentType,
		Status:         domain.JobStatus(m.Status),
		ImageURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.CreatedBy != nil {
		j.CreatedBy = *m.CreatedBy
	}
	return j
}

// applicationModel references its job and applicant profile with foreign
// keys; deleting either is refused while applications exist.
type applicationModel struct {
	ID          string       `gorm:"primaryKey;size:36"`
	JobID       string       `gorm:"size:36;not null;uniqueIndex:idx_application_job_applicant"`
	ApplicantID string       `gorm:"size:36;not null;uniqueIndex:idx_application_job_applicant;index"`
	Job         jobModel     `gorm:"foreignKey:JobID;constraint:OnDelete:RESTRICT"`
	Applicant   profileModel `gorm:"foreignKey:ApplicantID;constraint:OnDelete:RESTRICT"`
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	ResumePath  string `gorm:"index"`
	Status      string `gorm:"index;not null"`
	Comment     string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (applicationModel) TableName() string { return "applications" }

func newApplicationModel(a *domain.Application) applicationModel {
	return applicationModel{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		Phone:       a.Phone,
		ResumePath:  a.ResumePath,
		Status:      string(a.Status),
		Comment:     a.Comment,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (m applicationModel) toDomain() *domain.Application {
	return &domain.Application{
		ID:          m.ID,
		JobID:       m.JobID,
		ApplicantID: m.ApplicantID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		Phone:       m.Phone,
		ResumePath:  m.ResumePath,
		Status:      domain.ApplicationStatus(m.Status),
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type objectModel struct {
	Path        string `gorm:"primaryKey"`
	ContentType string
	Size        int64
	Data        []byte `gorm:"type:bytea"`
	CreatedAt   time.Time
}

func (objectModel) TableName() string { return "objects" }
