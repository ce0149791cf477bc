package jobs

import (
	"context"
	"errors"
	"testing"

	"jobboard-backend/internal/companies"
)

func newTestService(t *testing.T) (*Service, companies.Company) {
	t.Helper()
	companyRepo := companies.NewMemoryRepo()
	company := companies.Company{ID: "c-1", Name: "Acme", OwnerUserID: "recruiter-1"}
	if err := companyRepo.Create(context.Background(), company); err != nil {
		t.Fatal(err)
	}
	return NewService(NewMemoryRepo(), companyRepo), company
}

func TestPostAndSearch(t *testing.T) {
	svc, company := newTestService(t)

	job, err := svc.Post(context.Background(), "recruiter-1", PostInput{
		Title:        "Backend Engineer",
		Description:  "Build storage services in Go",
		Requirements: []string{"go", "postgres"},
		Salary:       120000,
		Location:     "Remote",
		JobType:      "full-time",
		CompanyID:    company.ID,
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if job.Positions != 1 {
		t.Fatalf("positions defaulted to %d, want 1", job.Positions)
	}

	if _, err := svc.Post(context.Background(), "recruiter-1", PostInput{
		Title:       "Frontend Engineer",
		Description: "Build the SPA",
		CompanyID:   company.ID,
	}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.Search(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d jobs, want 2", len(all))
	}

	matches, err := svc.Search(context.Background(), "storage")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Title != "Backend Engineer" {
		t.Fatalf("unexpected search result: %+v", matches)
	}
}

func TestPostValidation(t *testing.T) {
	svc, company := newTestService(t)

	cases := []struct {
		name string
		in   PostInput
	}{
		{"missing title", PostInput{Description: "d", CompanyID: company.ID}},
		{"missing description", PostInput{Title: "t", CompanyID: company.ID}},
		{"missing company", PostInput{Title: "t", Description: "d"}},
		{"negative salary", PostInput{Title: "t", Description: "d", CompanyID: company.ID, Salary: -1}},
		{"unknown company", PostInput{Title: "t", Description: "d", CompanyID: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Post(context.Background(), "recruiter-1", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPostRejectsForeignCompany(t *testing.T) {
	svc, company := newTestService(t)

	_, err := svc.Post(context.Background(), "someone-else", PostInput{
		Title:       "Backend Engineer",
		Description: "d",
		CompanyID:   company.ID,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListOwn(t *testing.T) {
	svc, company := newTestService(t)

	if _, err := svc.Post(context.Background(), "recruiter-1", PostInput{
		Title: "Backend Engineer", Description: "d", CompanyID: company.ID,
	}); err != nil {
		t.Fatal(err)
	}

	own, err := svc.ListOwn(context.Background(), "recruiter-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 {
		t.Fatalf("got %d jobs, want 1", len(own))
	}
	none, err := svc.ListOwn(context.Background(), "recruiter-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d jobs for other recruiter, want 0", len(none))
	}
}
