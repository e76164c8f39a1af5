package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

type OrderDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId,omitempty"`
	SessionID *string         `json:"sessionId,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Email     *string         `json:"email"`
	Name      *string         `json:"name"`
	Address   *string         `json:"address"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []ItemDTO       `json:"items"`
}

type ItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     *string         `json:"image"`
}

type ListDTO struct {
	Orders []OrderDTO `json:"orders"`
}

func FromModel(m models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, ItemDTO{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return OrderDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		SessionID: m.SessionID,
		Total:     m.Total,
		Status:    m.Status,
		Email:     m.Email,
		Name:      m.Name,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
		Items:     items,
	}
}
