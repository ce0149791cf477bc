package companies

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("company not found")
	ErrNameTaken = errors.New("company name already registered")
)

type Repo interface {
	Create(ctx context.Context, company Company) error
	GetByID(ctx context.Context, id string) (Company, error)
	GetByName(ctx context.Context, name string) (Company, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Company, error)
	Update(ctx context.Context, company Company) error
}
