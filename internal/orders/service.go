package orders

import (
	"context"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/db"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

// Service exposes read access to an owner's order history. Orders are
// created through checkout.
type Service interface {
	List(ctx context.Context, owner identity.Owner) (ListDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, owner identity.Owner) (ListDTO, error) {
	if err := owner.Require(); err != nil {
		return ListDTO{}, err
	}
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return ListDTO{}, db.ClassifyError(err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return ListDTO{Orders: out}, nil
}
