package checkout

import "github.com/shopspring/decimal"

// PlaceOrderRequest is the POST /orders body. Prices are taken as submitted.
// Blank optional strings count as absent.
type PlaceOrderRequest struct {
	Items   []ItemInput `json:"items" validate:"required,min=1,dive"`
	Email   *string     `json:"email,omitempty" validate:"omitempty,max=320"`
	Name    *string     `json:"name,omitempty" validate:"omitempty,max=200"`
	Address *string     `json:"address,omitempty" validate:"omitempty,max=500"`
}

type ItemInput struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Title     string          `json:"title" validate:"required,max=500"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"required,gt=0,lte=9999"`
	Image     *string         `json:"image,omitempty" validate:"omitempty,max=2048"`
}
