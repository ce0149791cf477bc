package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/extract"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/shared/telemetry"
	"jobboard-backend/internal/users"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("not allowed")
)

type Service struct {
	Repo  Repo
	Jobs  jobs.Repo
	Users users.Repo
	Store blob.Store
}

func NewService(repo Repo, jobRepo jobs.Repo, userRepo users.Repo, store blob.Store) *Service {
	return &Service{Repo: repo, Jobs: jobRepo, Users: userRepo, Store: store}
}

// Apply files an application for the job. When the applicant has a stored
// resume, its text is snapshotted onto the application; extraction failures
// degrade to an empty snapshot, never a failed apply.
func (s *Service) Apply(ctx context.Context, applicantID, jobID string) (Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return Application{}, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return Application{}, err
	}
	if _, err := s.Repo.GetByJobAndApplicant(ctx, job.ID, applicantID); err == nil {
		return Application{}, ErrAlreadyApplied
	} else if !errors.Is(err, ErrNotFound) {
		return Application{}, err
	}

	app := Application{
		ID:          blob.NewID(),
		JobID:       job.ID,
		ApplicantID: applicantID,
		Status:      StatusPending,
		ResumeText:  s.resumeSnapshot(ctx, applicantID),
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	return s.Repo.GetByID(ctx, app.ID)
}

func (s *Service) resumeSnapshot(ctx context.Context, applicantID string) string {
	user, err := s.Users.GetByID(ctx, applicantID)
	if err != nil || user.Profile.ResumeID == "" {
		return ""
	}
	text, err := extract.FromStore(ctx, s.Store, user.Profile.ResumeID)
	if err != nil {
		telemetry.Error("applications.resume_extract_failed", map[string]any{
			"user_id": applicantID,
			"blob_id": user.Profile.ResumeID,
			"err":     err.Error(),
		})
		return ""
	}
	return text
}

// ListOwn returns the applicant's applications, newest first.
func (s *Service) ListOwn(ctx context.Context, applicantID string) ([]Application, error) {
	return s.Repo.ListByApplicant(ctx, applicantID)
}

// Applicant pairs an application with the applicant's public profile for
// recruiter review.
type Applicant struct {
	Application Application   `json:"application"`
	User        users.UserDTO `json:"user"`
}

// ListApplicants returns the applications for a job the recruiter owns.
func (s *Service) ListApplicants(ctx context.Context, recruiterID, jobID string) ([]Applicant, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != recruiterID {
		return nil, ErrForbidden
	}

	apps, err := s.Repo.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Applicant, 0, len(apps))
	for _, app := range apps {
		entry := Applicant{Application: app}
		if user, err := s.Users.GetByID(ctx, app.ApplicantID); err == nil {
			entry.User = users.ToDTO(user)
		}
		out = append(out, entry)
	}
	return out, nil
}

// UpdateStatus moves an application between pending, accepted and rejected.
// Only the recruiter who posted the job may do so.
func (s *Service) UpdateStatus(ctx context.Context, recruiterID, applicationID, status string) (Application, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !ValidStatus(status) {
		return Application{}, fmt.Errorf("%w: status must be pending, accepted or rejected", ErrInvalidInput)
	}
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.CreatedBy != recruiterID {
		return Application{}, ErrForbidden
	}
	if err := s.Repo.UpdateStatus(ctx, app.ID, status); err != nil {
		return Application{}, err
	}
	return s.Repo.GetByID(ctx, app.ID)
}
