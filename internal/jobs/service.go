package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/companies"
)

var ErrInvalidInput = errors.New("invalid input")

type PostInput struct {
	Title           string
	Description     string
	Requirements    []string
	Salary          int64
	ExperienceLevel int
	Location        string
	JobType         string
	Positions       int
	CompanyID       string
}

type Service struct {
	Repo      Repo
	Companies companies.Repo
}

func NewService(repo Repo, companyRepo companies.Repo) *Service {
	return &Service{Repo: repo, Companies: companyRepo}
}

// Post creates a job opening under one of the recruiter's companies.
func (s *Service) Post(ctx context.Context, userID string, in PostInput) (Job, error) {
	if err := validatePost(in); err != nil {
		return Job{}, err
	}

	company, err := s.Companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		if errors.Is(err, companies.ErrNotFound) {
			return Job{}, fmt.Errorf("%w: unknown company", ErrInvalidInput)
		}
		return Job{}, err
	}
	if company.OwnerUserID != userID {
		return Job{}, fmt.Errorf("%w: company does not belong to you", ErrInvalidInput)
	}

	job := Job{
		ID:              blob.NewID(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Requirements:    in.Requirements,
		Salary:          in.Salary,
		ExperienceLevel: in.ExperienceLevel,
		Location:        in.Location,
		JobType:         in.JobType,
		Positions:       in.Positions,
		CompanyID:       company.ID,
		CreatedBy:       userID,
	}
	if job.Positions <= 0 {
		job.Positions = 1
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return s.Repo.GetByID(ctx, job.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Job, error) {
	if strings.TrimSpace(id) == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]Job, error) {
	return s.Repo.Search(ctx, keyword)
}

func (s *Service) ListOwn(ctx context.Context, userID string) ([]Job, error) {
	return s.Repo.ListByCreator(ctx, userID)
}

func validatePost(in PostInput) error {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.CompanyID) == "" {
		return fmt.Errorf("%w: title, description and companyId are required", ErrInvalidInput)
	}
	if in.Salary < 0 {
		return fmt.Errorf("%w: salary cannot be negative", ErrInvalidInput)
	}
	return nil
}
