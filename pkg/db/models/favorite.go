package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a product as liked by an owner.
type Favorite struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex:favorites_user_product_key,where:user_id IS NOT NULL"`
	SessionID *string    `gorm:"column:session_id;type:text;uniqueIndex:favorites_session_product_key,where:session_id IS NOT NULL"`
	ProductID int64      `gorm:"column:product_id;not null;uniqueIndex:favorites_user_product_key;uniqueIndex:favorites_session_product_key"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
