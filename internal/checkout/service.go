// Package checkout turns a submitted cart into an order and empties the
// owner's cart in the same transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/internal/cart"
	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const priceScale = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProfileLookup loads the account row used for shipping defaults.
type ProfileLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service places orders.
type Service interface {
	PlaceOrder(ctx context.Context, owner identity.Owner, req PlaceOrderRequest) (orders.OrderDTO, error)
}

type service struct {
	tx       txRunner
	orders   orders.Repository
	carts    *cart.Repository
	profiles ProfileLookup
	metrics  *metrics.CheckoutMetrics
}

// NewService wires checkout. profiles and m may be nil.
func NewService(tx txRunner, orderRepo orders.Repository, cartRepo *cart.Repository, profiles ProfileLookup, m *metrics.CheckoutMetrics) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	return &service{tx: tx, orders: orderRepo, carts: cartRepo, profiles: profiles, metrics: m}, nil
}

func (s *service) PlaceOrder(ctx context.Context, owner identity.Owner, req PlaceOrderRequest) (orders.OrderDTO, error) {
	dto, err := s.placeOrder(ctx, owner, req)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(code))
		return orders.OrderDTO{}, err
	}
	s.metrics.ObservePlaced(owner.Kind(), dto.Total)
	return dto, nil
}

func (s *service) placeOrder(ctx context.Context, owner identity.Owner, req PlaceOrderRequest) (orders.OrderDTO, error) {
	if err := owner.Require(); err != nil {
		return orders.OrderDTO{}, err
	}

	order, err := buildOrder(owner, req)
	if err != nil {
		return orders.OrderDTO{}, err
	}
	if err := s.applyProfileDefaults(ctx, owner, order); err != nil {
		return orders.OrderDTO{}, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if _, err := s.carts.WithTx(tx).ClearOwner(ctx, owner); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return orders.OrderDTO{}, db.ClassifyError(err, "create order")
	}
	return orders.FromModel(*order), nil
}

// buildOrder validates the submitted lines and snapshots them into an order.
func buildOrder(owner identity.Owner, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, validationError("items", "must contain at least one item")
	}

	userID, sessionID := owner.Columns()
	order := &models.Order{
		UserID:    userID,
		SessionID: sessionID,
		Status:    models.OrderStatusPending,
		Email:     trimmed(req.Email),
		Name:      trimmed(req.Name),
		Address:   trimmed(req.Address),
		Items:     make([]models.OrderItem, 0, len(req.Items)),
	}

	total := decimal.Zero
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		title := strings.TrimSpace(item.Title)
		switch {
		case item.ProductID <= 0:
			return nil, validationError(field+".productId", "must be positive")
		case title == "":
			return nil, validationError(field+".title", "is required")
		case !item.Price.IsPositive():
			return nil, validationError(field+".price", "must be positive")
		case item.Quantity <= 0:
			return nil, validationError(field+".quantity", "must be positive")
		}
		// Stored as numeric(12,2); the total is summed from the rounded price.
		price := item.Price.Round(priceScale)
		if !price.IsPositive() {
			return nil, validationError(field+".price", "must be positive")
		}

		order.Items = append(order.Items, models.OrderItem{
			Position:  i,
			ProductID: item.ProductID,
			Title:     title,
			Price:     price,
			Quantity:  item.Quantity,
			Image:     trimmed(item.Image),
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !total.IsPositive() {
		return nil, validationError("total", "must be positive")
	}
	order.Total = total
	return order, nil
}

// applyProfileDefaults fills blank contact and shipping fields from the
// account profile.
func (s *service) applyProfileDefaults(ctx context.Context, owner identity.Owner, order *models.Order) error {
	if owner.IsGuest() || s.profiles == nil {
		return nil
	}
	if order.Email != nil && order.Name != nil && order.Address != nil {
		return nil
	}
	user, err := s.profiles.FindByID(ctx, *owner.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return db.ClassifyError(err, "load profile")
	}
	if order.Email == nil {
		order.Email = trimmed(&user.Email)
	}
	if order.Name == nil {
		order.Name = trimmed(user.Name)
	}
	if order.Address == nil {
		order.Address = FormatAddress(user)
	}
	return nil
}

// FormatAddress renders "line1, line2, city, state postal, country" skipping
// empty parts. Returns nil when the profile has no address.
func FormatAddress(user *models.User) *string {
	if user == nil {
		return nil
	}
	region := strings.TrimSpace(strings.Join(nonEmpty(user.State, user.PostalCode), " "))
	parts := nonEmpty(user.AddressLine1, user.AddressLine2, user.City, &region, user.Country)
	if len(parts) == 0 {
		return nil
	}
	out := strings.Join(parts, ", ")
	return &out
}

func nonEmpty(values ...*string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := trimmed(v); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func validationError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: msg})
}
