package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/files"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
)

// ErrInvalidInput covers missing or malformed registration and update fields.
var ErrInvalidInput = errors.New("invalid input")

// FileUpload is an inbound multipart file attached to a register or update
// request. Nil means no file was sent.
type FileUpload struct {
	OriginalName string
	MimeType     string
	Reader       io.Reader
}

type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
	File        *FileUpload
}

type UpdateInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Bio         string
	Skills      []string
	File        *FileUpload
}

type Service struct {
	Repo  Repo
	Files *files.Service

	updates *keyedLock
}

func NewService(repo Repo, filesSvc *files.Service) *Service {
	return &Service{Repo: repo, Files: filesSvc, updates: newKeyedLock()}
}

// Register creates an account. An attached file is ingested before the user
// row exists and routed by category like profile updates; if persisting the
// user fails the fresh blob is cleaned up so nothing is stranded.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := validateRegister(in); err != nil {
		return User{}, err
	}
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           blob.NewID(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: string(hash),
		Role:         in.Role,
	}

	var ingestedID string
	if in.File != nil {
		stored, err := s.Files.Ingest(ctx, user.ID, in.File.OriginalName, in.File.MimeType, in.File.Reader)
		if err != nil {
			return User{}, err
		}
		ingestedID = stored.ID
		// Same slot routing as profile updates: a PDF attached at signup
		// becomes the resume, not the photo.
		if stored.Category == blob.CategoryImage {
			user.Profile.ProfilePhotoID = stored.ID
			user.Profile.ProfilePhotoFilename = stored.StoredName
		} else {
			user.Profile.ResumeID = stored.ID
			user.Profile.ResumeFilename = stored.StoredName
			user.Profile.ResumeOriginalName = stored.OriginalName
		}
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		if ingestedID != "" {
			s.Files.DeleteBestEffort(ctx, ingestedID)
		}
		return User{}, err
	}
	telemetry.Info("users.registered", map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

// Login verifies credentials. Role must match the stored account; a wrong
// role gets the same error as a wrong password.
func (s *Service) Login(ctx context.Context, email, password, role string) (User, error) {
	if strings.TrimSpace(email) == "" || password == "" || !ValidRole(role) {
		return User{}, ErrBadCredentials
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if user.Role != role {
		return User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrBadCredentials
	}
	return user, nil
}

// GetByID loads an account by id.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies profile edits, replacing the matching blob slot when
// a file is attached. Replacement order is fixed: ingest the new blob, read
// the old id, repoint the reference, persist the user, then delete the old
// blob best-effort. The whole sequence holds the per-user lock.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (User, error) {
	unlock := s.updates.Lock(userID)
	defer unlock()

	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		user.FullName = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		user.Email = strings.ToLower(v)
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		user.PhoneNumber = v
	}
	if in.Bio != "" {
		user.Profile.Bio = in.Bio
	}
	if len(in.Skills) > 0 {
		user.Profile.Skills = trimSkills(in.Skills)
	}

	var oldBlobID string
	if in.File != nil {
		stored, err := s.Files.Ingest(ctx, userID, in.File.OriginalName, in.File.MimeType, in.File.Reader)
		if err != nil {
			return User{}, err
		}
		switch stored.Category {
		case blob.CategoryImage:
			oldBlobID = user.Profile.ProfilePhotoID
			user.Profile.ProfilePhotoID = stored.ID
			user.Profile.ProfilePhotoFilename = stored.StoredName
		default:
			oldBlobID = user.Profile.ResumeID
			user.Profile.ResumeID = stored.ID
			user.Profile.ResumeFilename = stored.StoredName
			user.Profile.ResumeOriginalName = stored.OriginalName
		}

		if err := s.Repo.Update(ctx, user); err != nil {
			// The user still points at the old blob, so the new one is
			// the orphan to reap.
			s.Files.DeleteBestEffort(ctx, stored.ID)
			return User{}, err
		}

		if oldBlobID != "" {
			if s.Files.DeleteBestEffort(ctx, oldBlobID) {
				metrics.IncBlobDeleted()
			} else {
				metrics.IncOrphanedBlob()
				telemetry.Error("users.profile.orphaned_blob", map[string]any{
					"user_id": userID,
					"blob_id": oldBlobID,
				})
			}
		}
		return user, nil
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.FullName) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.PhoneNumber) == "" ||
		in.Password == "" {
		return fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if !ValidRole(in.Role) {
		return fmt.Errorf("%w: role must be student or recruiter", ErrInvalidInput)
	}
	return nil
}

func trimSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
