package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/internal/cart"
	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/db/dbtest"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	client   *db.Client
	carts    *cart.Repository
	orders   orders.Repository
	registry *prometheus.Registry
	svc      Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	f := fixture{
		client:   client,
		carts:    cart.NewRepository(client.DB()),
		orders:   orders.NewRepository(client.DB()),
		registry: prometheus.NewRegistry(),
	}
	svc, err := NewService(client, f.orders, f.carts, nil, metrics.NewCheckoutMetrics(f.registry))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func str(v string) *string { return &v }

func mugRequest() PlaceOrderRequest {
	return PlaceOrderRequest{Items: []ItemInput{{
		ProductID: 5,
		Title:     "Mug",
		Price:     decimal.RequireFromString("9.99"),
		Quantity:  2,
	}}}
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderCreatesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := identity.Guest("guest_123")

	_, err := f.carts.Upsert(ctx, owner, 5, 2)
	require.NoError(t, err)
	_, err = f.carts.Upsert(ctx, owner, 9, 1)
	require.NoError(t, err)
	other := identity.Guest("guest_456")
	_, err = f.carts.Upsert(ctx, other, 5, 1)
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(ctx, owner, mugRequest())
	require.NoError(t, err)
	assert.Equal(t, "19.98", order.Total.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Mug", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)

	remaining, err := f.carts.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	untouched, err := f.carts.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Len(t, untouched, 1, "other owners keep their carts")

	listed, err := f.orders.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Total.Equal(decimal.RequireFromString("19.98")))

	assert.Equal(t, 1.0, counterTotal(t, f.registry, "checkout_orders_placed_total"))
}

func TestPlaceOrderTrimsSnapshotFields(t *testing.T) {
	f := newFixture(t)
	req := PlaceOrderRequest{
		Items: []ItemInput{
			{ProductID: 1, Title: "  Lamp ", Price: decimal.RequireFromString("12.50"), Quantity: 1, Image: str("https://cdn.example.com/lamp.png")},
			{ProductID: 2, Title: "Chair", Price: decimal.RequireFromString("40"), Quantity: 3, Image: str("  ")},
		},
		Email: str("  shopper@example.com "),
		Name:  str(""),
	}
	order, err := f.svc.PlaceOrder(context.Background(), identity.Guest("guest_1"), req)
	require.NoError(t, err)
	assert.Equal(t, "132.50", order.Total.StringFixed(2))
	assert.Equal(t, "Lamp", order.Items[0].Title)
	require.NotNil(t, order.Items[0].Image)
	assert.Nil(t, order.Items[1].Image)
	require.NotNil(t, order.Email)
	assert.Equal(t, "shopper@example.com", *order.Email)
	assert.Nil(t, order.Name)
}

func TestPlaceOrderRoundsPricesAndKeepsImageAsSubmitted(t *testing.T) {
	f := newFixture(t)
	req := PlaceOrderRequest{Items: []ItemInput{
		{ProductID: 1, Title: "Mug", Price: decimal.RequireFromString("10.125"), Quantity: 3, Image: str("/img/mug.png")},
	}}
	order, err := f.svc.PlaceOrder(context.Background(), identity.Guest("guest_123"), req)
	require.NoError(t, err)
	assert.Equal(t, "10.13", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, "30.39", order.Total.StringFixed(2), "total follows the stored line price")
	require.NotNil(t, order.Items[0].Image)
	assert.Equal(t, "/img/mug.png", *order.Items[0].Image)
}

func TestPlaceOrderRejectsInvalidInput(t *testing.T) {
	cases := map[string]PlaceOrderRequest{
		"no items":       {},
		"zero product":   {Items: []ItemInput{{ProductID: 0, Title: "Mug", Price: decimal.NewFromInt(1), Quantity: 1}}},
		"blank title":    {Items: []ItemInput{{ProductID: 1, Title: "   ", Price: decimal.NewFromInt(1), Quantity: 1}}},
		"zero price":     {Items: []ItemInput{{ProductID: 1, Title: "Mug", Price: decimal.Zero, Quantity: 1}}},
		"negative price": {Items: []ItemInput{{ProductID: 1, Title: "Mug", Price: decimal.NewFromInt(-3), Quantity: 1}}},
		"rounds to zero": {Items: []ItemInput{{ProductID: 1, Title: "Mug", Price: decimal.RequireFromString("0.004"), Quantity: 1}}},
		"zero quantity":  {Items: []ItemInput{{ProductID: 1, Title: "Mug", Price: decimal.NewFromInt(1), Quantity: 0}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			owner := identity.Guest("guest_123")
			_, err := f.carts.Upsert(ctx, owner, 5, 1)
			require.NoError(t, err)

			_, err = f.svc.PlaceOrder(ctx, owner, req)
			require.Error(t, err)
			assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

			assert.Zero(t, countRows(t, f.client.DB(), &models.Order{}))
			assert.Zero(t, countRows(t, f.client.DB(), &models.OrderItem{}))
			assert.EqualValues(t, 1, countRows(t, f.client.DB(), &models.CartItem{}), "cart untouched")
		})
	}
}

func TestPlaceOrderRequiresOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), identity.Guest(""), mugRequest())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, 1.0, counterTotal(t, f.registry, "checkout_orders_failed_total"))
}

type failingClearRepo struct {
	orders.Repository
}

func (r failingClearRepo) WithTx(tx *gorm.DB) orders.Repository {
	return failingClearRepo{Repository: r.Repository.WithTx(tx)}
}

func (r failingClearRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if _, err := r.Repository.Create(ctx, order); err != nil {
		return nil, err
	}
	return nil, errors.New("connection reset")
}

func TestPlaceOrderRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := identity.Guest("guest_123")
	_, err := f.carts.Upsert(ctx, owner, 5, 2)
	require.NoError(t, err)

	svc, err := NewService(f.client, failingClearRepo{Repository: f.orders}, f.carts, nil, nil)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, owner, mugRequest())
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInternal))

	assert.Zero(t, countRows(t, f.client.DB(), &models.Order{}))
	assert.Zero(t, countRows(t, f.client.DB(), &models.OrderItem{}))
	items, err := f.carts.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type stubProfiles struct {
	user *models.User
	err  error
}

func (s stubProfiles) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func TestPlaceOrderAppliesProfileDefaultsForAccounts(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	profile := &models.User{
		ID:           userID,
		Email:        "ada@example.com",
		Name:         str("Ada"),
		AddressLine1: str("1 Main St"),
		City:         str("Lagos"),
		State:        str("LA"),
		PostalCode:   str("100001"),
		Country:      str("NG"),
	}
	svc, err := NewService(f.client, f.orders, f.carts, stubProfiles{user: profile}, nil)
	require.NoError(t, err)

	req := mugRequest()
	req.Name = str("Ada L.")
	order, err := svc.PlaceOrder(context.Background(), identity.Account(userID), req)
	require.NoError(t, err)
	require.NotNil(t, order.Address)
	assert.Equal(t, "1 Main St, Lagos, LA 100001, NG", *order.Address)
	assert.Equal(t, "ada@example.com", *order.Email)
	assert.Equal(t, "Ada L.", *order.Name, "submitted values win")
}

func TestPlaceOrderSkipsDefaultsForMissingProfile(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(f.client, f.orders, f.carts, stubProfiles{err: gorm.ErrRecordNotFound}, nil)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), identity.Account(uuid.New()), mugRequest())
	require.NoError(t, err)
	assert.Nil(t, order.Address)
}

func TestFormatAddress(t *testing.T) {
	assert.Nil(t, FormatAddress(&models.User{}))
	got := FormatAddress(&models.User{AddressLine1: str("1 Main"), AddressLine2: str("Apt 2"), PostalCode: str("9000")})
	require.NotNil(t, got)
	assert.Equal(t, "1 Main, Apt 2, 9000", *got)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
