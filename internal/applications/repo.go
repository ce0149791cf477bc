package applications

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("already applied to this job")
)

type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
