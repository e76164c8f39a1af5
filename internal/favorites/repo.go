package favorites

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

const insertSQL = `INSERT INTO favorites (id, user_id, session_id, product_id, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (%s, product_id) WHERE %s IS NOT NULL DO NOTHING`

// Repository persists favorites scoped by owner.
type Repository struct {
	repo.Base
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), now: func() time.Time { return time.Now().UTC() }}
}

// ListByOwner returns the owner's favorites, newest first.
func (r *Repository) ListByOwner(ctx context.Context, owner identity.Owner) ([]models.Favorite, error) {
	var rows []models.Favorite
	err := r.DB(ctx).
		Scopes(owner.Scope).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add inserts the favorite unless it already exists and returns the stored
// row. created is false when the row was already present.
func (r *Repository) Add(ctx context.Context, owner identity.Owner, productID int64) (*models.Favorite, bool, error) {
	column := "session_id"
	if !owner.IsGuest() {
		column = "user_id"
	}
	userID, sessionID := owner.Columns()

	res := r.DB(ctx).
		Exec(fmt.Sprintf(insertSQL, column, column), uuid.New(), userID, sessionID, productID, r.now())
	if res.Error != nil {
		return nil, false, res.Error
	}

	var row models.Favorite
	err := r.DB(ctx).
		Scopes(owner.Scope).
		Where("product_id = ?", productID).
		First(&row).Error
	if err != nil {
		return nil, false, err
	}
	return &row, res.RowsAffected > 0, nil
}

// Remove deletes the owner's favorite for productID. Missing rows are not an error.
func (r *Repository) Remove(ctx context.Context, owner identity.Owner, productID int64) error {
	return r.DB(ctx).
		Scopes(owner.Scope).
		Where("product_id = ?", productID).
		Delete(&models.Favorite{}).Error
}
