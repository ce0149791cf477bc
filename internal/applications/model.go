package applications

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	ApplicantID string    `json:"applicantId"`
	Status      string    `json:"status"`
	// ResumeText is a plain-text snapshot of the applicant's resume at
	// apply time, searchable by recruiters. Empty when extraction failed.
	ResumeText string    `json:"resumeText,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ValidStatus reports whether a status transition target is recognized.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}
