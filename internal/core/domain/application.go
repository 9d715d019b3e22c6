package domain

import "time"

// ApplicationStatus is the HR review tag on an application.
type ApplicationStatus string

const (
	StatusForReview   ApplicationStatus = "For review"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusInterview   ApplicationStatus = "Interview"
	StatusRejected    ApplicationStatus = "Rejected"
	StatusHired       ApplicationStatus = "Hired"
)

var applicationStatuses = []ApplicationStatus{
	StatusForReview, StatusShortlisted, StatusInterview, StatusRejected, StatusHired,
}

// ApplicationStatuses lists every status in review order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

// ParseApplicationStatus validates a raw status string.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range applicationStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Application is an applicant's submission against a job posting.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	ResumePath  string            `json:"resume_path"`
	Status      ApplicationStatus `json:"status"`
	Comment     string            `json:"comment,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ChangeEvent is published whenever an application changes.
type ChangeEvent struct {
	Type          string            `json:"type"`
	ApplicationID string            `json:"application_id"`
	JobID         string            `json:"job_id,omitempty"`
	Status        ApplicationStatus `json:"status,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
	EventApplicationDeleted       = "application.deleted"
)
