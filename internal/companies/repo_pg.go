package companies

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const selectCompany = `
SELECT id, name, description, website, location, logo_blob_id, owner_user_id, created_at, updated_at
FROM companies`

func (r *PGRepo) Create(ctx context.Context, company Company) error {
	const query = `
INSERT INTO companies (id, name, description, website, location, logo_blob_id, owner_user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		company.ID,
		company.Name,
		nullableString(company.Description),
		nullableString(company.Website),
		nullableString(company.Location),
		nullableString(company.LogoBlobID),
		company.OwnerUserID,
	)
	if err != nil && strings.Contains(err.Error(), "companies_name_key") {
		return ErrNameTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Company, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectCompany+` WHERE id = $1 LIMIT 1`, id))
}

func (r *PGRepo) GetByName(ctx context.Context, name string) (Company, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectCompany+` WHERE lower(name) = lower($1) LIMIT 1`, name))
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Company, error) {
	rows, err := r.DB.QueryContext(ctx, selectCompany+` WHERE owner_user_id = $1 ORDER BY created_at DESC`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Company, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, company)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, company Company) error {
	const query = `
UPDATE companies SET
  name = $2,
  description = $3,
  website = $4,
  location = $5,
  logo_blob_id = $6,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		company.ID,
		company.Name,
		nullableString(company.Description),
		nullableString(company.Website),
		nullableString(company.Location),
		nullableString(company.LogoBlobID),
	)
	if err != nil {
		if strings.Contains(err.Error(), "companies_name_key") {
			return ErrNameTaken
		}
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (Company, error) {
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return company, nil
}

func scanCompany(row rowScanner) (Company, error) {
	var company Company
	var description, website, location, logo sql.NullString
	err := row.Scan(
		&company.ID,
		&company.Name,
		&description,
		&website,
		&location,
		&logo,
		&company.OwnerUserID,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		return Company{}, err
	}
	company.Description = description.String
	company.Website = website.String
	company.Location = location.String
	company.LogoBlobID = logo.String
	return company, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
