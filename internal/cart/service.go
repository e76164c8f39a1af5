package cart

import (
	"context"
	"errors"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/db"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

const defaultAddQuantity = 1

// Service exposes the server-side cart operations.
type Service interface {
	List(ctx context.Context, owner identity.Owner) (ListDTO, error)
	Add(ctx context.Context, owner identity.Owner, req AddItemRequest) (ItemDTO, error)
	UpdateQuantity(ctx context.Context, owner identity.Owner, req UpdateQuantityRequest) (UpdateResult, error)
	Remove(ctx context.Context, owner identity.Owner, productID int64) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, owner identity.Owner) (ListDTO, error) {
	if err := owner.Require(); err != nil {
		return ListDTO{}, err
	}
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return ListDTO{}, db.ClassifyError(err, "list cart items")
	}
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	return ListDTO{Items: items}, nil
}

func (s *service) Add(ctx context.Context, owner identity.Owner, req AddItemRequest) (ItemDTO, error) {
	if err := owner.Require(); err != nil {
		return ItemDTO{}, err
	}
	if req.ProductID <= 0 {
		return ItemDTO{}, validationError("productId", "is required")
	}
	quantity := defaultAddQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 {
		return ItemDTO{}, validationError("quantity", "must be positive")
	}

	row, err := s.repo.Upsert(ctx, owner, req.ProductID, quantity)
	if err != nil {
		return ItemDTO{}, db.ClassifyError(err, "add cart item")
	}
	return FromModel(*row), nil
}

func (s *service) UpdateQuantity(ctx context.Context, owner identity.Owner, req UpdateQuantityRequest) (UpdateResult, error) {
	if err := owner.Require(); err != nil {
		return UpdateResult{}, err
	}
	if req.ProductID <= 0 {
		return UpdateResult{}, validationError("productId", "is required")
	}
	if req.Quantity == nil {
		return UpdateResult{}, validationError("quantity", "is required")
	}

	if *req.Quantity <= 0 {
		if err := s.repo.Remove(ctx, owner, req.ProductID); err != nil {
			return UpdateResult{}, db.ClassifyError(err, "remove cart item")
		}
		return UpdateResult{Removed: true}, nil
	}

	row, err := s.repo.UpdateQuantity(ctx, owner, req.ProductID, *req.Quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
	}
	if err != nil {
		return UpdateResult{}, db.ClassifyError(err, "update cart item")
	}
	item := FromModel(*row)
	return UpdateResult{Item: &item}, nil
}

func (s *service) Remove(ctx context.Context, owner identity.Owner, productID int64) error {
	if err := owner.Require(); err != nil {
		return err
	}
	if productID <= 0 {
		return validationError("productId", "is required")
	}
	if err := s.repo.Remove(ctx, owner, productID); err != nil {
		return db.ClassifyError(err, "remove cart item")
	}
	return nil
}

func validationError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: msg})
}
