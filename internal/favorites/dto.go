package favorites

import (
	"time"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/pkg/db/models"
)

type AddRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type FavoriteDTO struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	SessionID *string    `json:"sessionId,omitempty"`
	ProductID int64      `json:"productId"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ListDTO struct {
	Favorites []FavoriteDTO `json:"favorites"`
}

func FromModel(m models.Favorite) FavoriteDTO {
	return FavoriteDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		SessionID: m.SessionID,
		ProductID: m.ProductID,
		CreatedAt: m.CreatedAt,
	}
}
