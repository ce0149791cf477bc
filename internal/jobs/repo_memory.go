package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job.CreatedAt = time.Now().UTC()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Search(ctx context.Context, keyword string) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Job, 0)
	for _, job := range r.jobs {
		if keyword == "" ||
			strings.Contains(strings.ToLower(job.Title), keyword) ||
			strings.Contains(strings.ToLower(job.Description), keyword) {
			out = append(out, job)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) ListByCreator(ctx context.Context, userID string) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Job, 0)
	for _, job := range r.jobs {
		if job.CreatedBy == userID {
			out = append(out, job)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(jobs []Job) {
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
}
