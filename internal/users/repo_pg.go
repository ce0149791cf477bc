package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, fullname, email, phone_number, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		strings.ToLower(user.Email),
		user.PhoneNumber,
		user.PasswordHash,
		user.Role,
	)
	if err != nil && strings.Contains(err.Error(), "users_email_key") {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = selectUser + ` WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = selectUser + ` WHERE email = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *PGRepo) Update(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  fullname = $2,
  email = $3,
  phone_number = $4,
  bio = $5,
  skills = $6,
  profile_photo_id = $7,
  profile_photo_filename = $8,
  resume_id = $9,
  resume_filename = $10,
  resume_original_name = $11,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		strings.ToLower(user.Email),
		user.PhoneNumber,
		nullableString(user.Profile.Bio),
		nullableString(strings.Join(user.Profile.Skills, ",")),
		nullableString(user.Profile.ProfilePhotoID),
		nullableString(user.Profile.ProfilePhotoFilename),
		nullableString(user.Profile.ResumeID),
		nullableString(user.Profile.ResumeFilename),
		nullableString(user.Profile.ResumeOriginalName),
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectUser = `
SELECT id, fullname, email, phone_number, password_hash, role,
       bio, skills, profile_photo_id, profile_photo_filename,
       resume_id, resume_filename, resume_original_name,
       created_at, updated_at
FROM users`

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var bio, skills sql.NullString
	var photoID, photoName sql.NullString
	var resumeID, resumeName, resumeOriginal sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.Role,
		&bio,
		&skills,
		&photoID,
		&photoName,
		&resumeID,
		&resumeName,
		&resumeOriginal,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Profile.Bio = bio.String
	if skills.Valid && skills.String != "" {
		user.Profile.Skills = strings.Split(skills.String, ",")
	}
	user.Profile.ProfilePhotoID = photoID.String
	user.Profile.ProfilePhotoFilename = photoName.String
	user.Profile.ResumeID = resumeID.String
	user.Profile.ResumeFilename = resumeName.String
	user.Profile.ResumeOriginalName = resumeOriginal.String
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
