package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/internal/repo"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

const upsertSQL = `INSERT INTO cart_items (id, user_id, session_id, product_id, quantity, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (%s, product_id) WHERE %s IS NOT NULL
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`

// Repository persists cart lines scoped by owner.
type Repository struct {
	repo.Base
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), now: func() time.Time { return time.Now().UTC() }}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx), now: r.now}
}

// ListByOwner returns the owner's lines, newest first.
func (r *Repository) ListByOwner(ctx context.Context, owner identity.Owner) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB(ctx).
		Scopes(owner.Scope).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert inserts a line or adds quantity to the existing one in a single
// statement, then returns the stored row.
func (r *Repository) Upsert(ctx context.Context, owner identity.Owner, productID int64, quantity int) (*models.CartItem, error) {
	column := "session_id"
	if !owner.IsGuest() {
		column = "user_id"
	}
	userID, sessionID := owner.Columns()
	now := r.now()

	err := r.DB(ctx).
		Exec(fmt.Sprintf(upsertSQL, column, column), uuid.New(), userID, sessionID, productID, quantity, now, now).
		Error
	if err != nil {
		return nil, err
	}
	return r.find(ctx, owner, productID)
}

// UpdateQuantity overwrites the quantity of an existing line. A missing line
// yields gorm.ErrRecordNotFound.
func (r *Repository) UpdateQuantity(ctx context.Context, owner identity.Owner, productID int64, quantity int) (*models.CartItem, error) {
	res := r.DB(ctx).
		Model(&models.CartItem{}).
		Scopes(owner.Scope).
		Where("product_id = ?", productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": r.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.find(ctx, owner, productID)
}

// Remove deletes the owner's line for productID. Missing lines are not an error.
func (r *Repository) Remove(ctx context.Context, owner identity.Owner, productID int64) error {
	return r.DB(ctx).
		Scopes(owner.Scope).
		Where("product_id = ?", productID).
		Delete(&models.CartItem{}).Error
}

// ClearOwner deletes every line of the owner and reports how many were removed.
func (r *Repository) ClearOwner(ctx context.Context, owner identity.Owner) (int64, error) {
	res := r.DB(ctx).
		Scopes(owner.Scope).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) find(ctx context.Context, owner identity.Owner, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).
		Scopes(owner.Scope).
		Where("product_id = ?", productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
