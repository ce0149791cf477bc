package companies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/files"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
)

var ErrInvalidInput = errors.New("invalid input")

type UpdateInput struct {
	Name        string
	Description string
	Website     string
	Location    string

	LogoName string
	LogoMime string
	Logo     io.Reader
}

type Service struct {
	Repo  Repo
	Files *files.Service
}

func NewService(repo Repo, filesSvc *files.Service) *Service {
	return &Service{Repo: repo, Files: filesSvc}
}

// Register creates a company shell owned by the recruiter. Details are
// filled in through Update.
func (s *Service) Register(ctx context.Context, ownerUserID, name string) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	company := Company{
		ID:          blob.NewID(),
		Name:        name,
		OwnerUserID: ownerUserID,
	}
	if err := s.Repo.Create(ctx, company); err != nil {
		return Company{}, err
	}
	return s.Repo.GetByID(ctx, company.ID)
}

// Update edits company details. A new logo replaces the old blob, deleting
// it best-effort once the row is persisted.
func (s *Service) Update(ctx context.Context, ownerUserID, companyID string, in UpdateInput) (Company, error) {
	company, err := s.Repo.GetByID(ctx, companyID)
	if err != nil {
		return Company{}, err
	}
	if company.OwnerUserID != ownerUserID {
		return Company{}, ErrNotFound
	}

	if v := strings.TrimSpace(in.Name); v != "" {
		company.Name = v
	}
	if in.Description != "" {
		company.Description = in.Description
	}
	if in.Website != "" {
		company.Website = in.Website
	}
	if in.Location != "" {
		company.Location = in.Location
	}

	oldLogo := ""
	if in.Logo != nil {
		stored, err := s.Files.Ingest(ctx, ownerUserID, in.LogoName, in.LogoMime, in.Logo)
		if err != nil {
			return Company{}, err
		}
		if stored.Category != blob.CategoryImage {
			s.Files.DeleteBestEffort(ctx, stored.ID)
			return Company{}, fmt.Errorf("%w: logo must be an image", ErrInvalidInput)
		}
		oldLogo = company.LogoBlobID
		company.LogoBlobID = stored.ID

		if err := s.Repo.Update(ctx, company); err != nil {
			s.Files.DeleteBestEffort(ctx, stored.ID)
			return Company{}, err
		}
		if oldLogo != "" {
			if s.Files.DeleteBestEffort(ctx, oldLogo) {
				metrics.IncBlobDeleted()
			} else {
				metrics.IncOrphanedBlob()
				telemetry.Error("companies.logo.orphaned_blob", map[string]any{
					"company_id": companyID,
					"blob_id":    oldLogo,
				})
			}
		}
		return company, nil
	}

	if err := s.Repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Company, error) {
	if strings.TrimSpace(id) == "" {
		return Company{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) ListOwn(ctx context.Context, ownerUserID string) ([]Company, error) {
	return s.Repo.ListByOwner(ctx, ownerUserID)
}
