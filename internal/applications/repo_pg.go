package applications

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const selectApplication = `
SELECT id, job_id, applicant_id, status, resume_text, created_at, updated_at
FROM applications`

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, job_id, applicant_id, status, resume_text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.Status,
		nullableString(app.ResumeText),
	)
	if err != nil && strings.Contains(err.Error(), "applications_job_id_applicant_id_key") {
		return ErrAlreadyApplied
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectApplication+` WHERE id = $1 LIMIT 1`, id))
}

func (r *PGRepo) GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (Application, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		selectApplication+` WHERE job_id = $1 AND applicant_id = $2 LIMIT 1`, jobID, applicantID))
}

func (r *PGRepo) ListByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	return r.list(ctx, selectApplication+` WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	return r.list(ctx, selectApplication+` WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (Application, error) {
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var resumeText sql.NullString
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.ApplicantID,
		&app.Status,
		&resumeText,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	app.ResumeText = resumeText.String
	return app, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
