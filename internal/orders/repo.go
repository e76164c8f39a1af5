package orders

import (
	"context"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/internal/repo"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists orders and their snapshot lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListByOwner(ctx context.Context, owner identity.Owner) ([]models.Order, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ListByOwner returns the owner's orders newest first with items in submission order.
func (r *repository) ListByOwner(ctx context.Context, owner identity.Owner) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Scopes(owner.Scope).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
