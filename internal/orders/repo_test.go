package orders

import (
	"context"
	"testing"
	"time"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/db/dbtest"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(owner identity.Owner, createdAt time.Time, titles ...string) *models.Order {
	userID, sessionID := owner.Columns()
	order := &models.Order{
		UserID:    userID,
		SessionID: sessionID,
		Status:    models.OrderStatusPending,
		CreatedAt: createdAt,
	}
	total := decimal.Zero
	for i, title := range titles {
		price := decimal.NewFromInt(int64(i + 1))
		order.Items = append(order.Items, models.OrderItem{
			Position:  i,
			ProductID: int64(i + 1),
			Title:     title,
			Price:     price,
			Quantity:  1,
		})
		total = total.Add(price)
	}
	order.Total = total
	return order
}

func TestCreateAndListByOwner(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()
	owner := identity.Guest("guest_123")
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newOrder(owner, base, "Mug", "Plate", "Bowl"))
	require.NoError(t, err)
	latest, err := repo.Create(ctx, newOrder(owner, base.Add(time.Hour), "Lamp"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newOrder(identity.Guest("other"), base, "Chair"))
	require.NoError(t, err)

	rows, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, latest.ID, rows[0].ID, "newest order first")
	require.Len(t, rows[1].Items, 3)
	assert.Equal(t, []string{"Mug", "Plate", "Bowl"}, []string{rows[1].Items[0].Title, rows[1].Items[1].Title, rows[1].Items[2].Title})
	assert.True(t, rows[1].Total.Equal(decimal.NewFromInt(6)))
}

func TestServiceListRequiresOwner(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)

	_, err = svc.List(context.Background(), identity.Owner{})
	require.Error(t, err)

	list, err := svc.List(context.Background(), identity.Guest("nobody"))
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Empty(t, list.Orders)
}
