package jobs

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("job not found")

type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, id string) (Job, error)
	// Search returns jobs whose title or description contains the keyword,
	// newest first. Empty keyword means all jobs.
	Search(ctx context.Context, keyword string) ([]Job, error)
	ListByCreator(ctx context.Context, userID string) ([]Job, error)
}
