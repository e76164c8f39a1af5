package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product line in an owner's server-side cart. Exactly one of
// UserID and SessionID is set.
type CartItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex:cart_items_user_product_key,where:user_id IS NOT NULL"`
	SessionID *string    `gorm:"column:session_id;type:text;uniqueIndex:cart_items_session_product_key,where:session_id IS NOT NULL"`
	ProductID int64      `gorm:"column:product_id;not null;uniqueIndex:cart_items_user_product_key;uniqueIndex:cart_items_session_product_key"`
	Quantity  int        `gorm:"column:quantity;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
