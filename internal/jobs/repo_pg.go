package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const selectJob = `
SELECT id, title, description, requirements, salary, experience_level, location, job_type, positions, company_id, created_by, created_at
FROM jobs`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (id, title, description, requirements, salary, experience_level, location, job_type, positions, company_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		strings.Join(job.Requirements, ","),
		job.Salary,
		job.ExperienceLevel,
		job.Location,
		job.JobType,
		job.Positions,
		job.CompanyID,
		job.CreatedBy,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	job, err := scanJob(r.DB.QueryRowContext(ctx, selectJob+` WHERE id = $1 LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

func (r *PGRepo) Search(ctx context.Context, keyword string) ([]Job, error) {
	const query = selectJob + `
WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
ORDER BY created_at DESC`
	return r.list(ctx, query, strings.TrimSpace(keyword))
}

func (r *PGRepo) ListByCreator(ctx context.Context, userID string) ([]Job, error) {
	return r.list(ctx, selectJob+` WHERE created_by = $1 ORDER BY created_at DESC`, userID)
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var requirements, location, jobType sql.NullString
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&requirements,
		&job.Salary,
		&job.ExperienceLevel,
		&location,
		&jobType,
		&job.Positions,
		&job.CompanyID,
		&job.CreatedBy,
		&job.CreatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if requirements.Valid && requirements.String != "" {
		job.Requirements = strings.Split(requirements.String, ",")
	}
	job.Location = location.String
	job.JobType = jobType.String
	return job, nil
}
