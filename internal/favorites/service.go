package favorites

import (
	"context"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/db"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

// Service exposes favorite management for an owner.
type Service interface {
	List(ctx context.Context, owner identity.Owner) (ListDTO, error)
	Add(ctx context.Context, owner identity.Owner, productID int64) (FavoriteDTO, bool, error)
	Remove(ctx context.Context, owner identity.Owner, productID int64) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, owner identity.Owner) (ListDTO, error) {
	if err := owner.Require(); err != nil {
		return ListDTO{}, err
	}
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return ListDTO{}, db.ClassifyError(err, "list favorites")
	}
	out := make([]FavoriteDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return ListDTO{Favorites: out}, nil
}

// Add is a no-op returning the existing row when the product is already a favorite.
func (s *service) Add(ctx context.Context, owner identity.Owner, productID int64) (FavoriteDTO, bool, error) {
	if err := owner.Require(); err != nil {
		return FavoriteDTO{}, false, err
	}
	if productID <= 0 {
		return FavoriteDTO{}, false, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"productId": "is required"})
	}
	row, created, err := s.repo.Add(ctx, owner, productID)
	if err != nil {
		return FavoriteDTO{}, false, db.ClassifyError(err, "add favorite")
	}
	return FromModel(*row), created, nil
}

func (s *service) Remove(ctx context.Context, owner identity.Owner, productID int64) error {
	if err := owner.Require(); err != nil {
		return err
	}
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"productId": "is required"})
	}
	if err := s.repo.Remove(ctx, owner, productID); err != nil {
		return db.ClassifyError(err, "remove favorite")
	}
	return nil
}
