package users

import "time"

const (
	RoleStudent   = "student"
	RoleRecruiter = "recruiter"
)

// User is an account. Profile blobs are referenced by id only; the bytes
// live in the blob store.
type User struct {
	ID           string
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Role         string
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the mutable profile fields, including at most one live
// blob reference per slot (photo, resume).
type Profile struct {
	Bio    string
	Skills []string

	ProfilePhotoID       string
	ProfilePhotoFilename string

	ResumeID           string
	ResumeFilename     string
	ResumeOriginalName string
}

// ValidRole reports whether the role is one the system accepts.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleRecruiter
}
