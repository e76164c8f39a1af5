package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const OrderStatusPending = "pending"

// Order is immutable once created.
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID      `gorm:"column:user_id;type:uuid;index:orders_user_id_idx"`
	SessionID *string         `gorm:"column:session_id;type:text;index:orders_session_id_idx"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Status    string          `gorm:"column:status;not null"`
	Email     *string         `gorm:"column:email"`
	Name      *string         `gorm:"column:name"`
	Address   *string         `gorm:"column:address"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots a product at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	Position  int             `gorm:"column:position;not null"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Title     string          `gorm:"column:title;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Image     *string         `gorm:"column:image"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
