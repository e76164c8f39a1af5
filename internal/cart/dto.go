package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/pkg/db/models"
)

// AddItemRequest is the POST /cart body.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity,omitempty" validate:"omitempty,gt=0,lte=9999"`
}

// UpdateQuantityRequest is the PATCH /cart body. Zero or negative quantities
// remove the line.
type UpdateQuantityRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"required,lte=9999"`
}

type ItemDTO struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	SessionID *string    `json:"sessionId,omitempty"`
	ProductID int64      `json:"productId"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ListDTO struct {
	Items []ItemDTO `json:"items"`
}

// UpdateResult reports either the updated line or that it was removed.
type UpdateResult struct {
	Item    *ItemDTO
	Removed bool
}

func FromModel(m models.CartItem) ItemDTO {
	return ItemDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		SessionID: m.SessionID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
