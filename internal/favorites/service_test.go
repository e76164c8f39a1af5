package favorites

import (
	"context"
	"testing"

	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/db/dbtest"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTwiceReturnsSameRow(t *testing.T) {
	conn := dbtest.Open(t).DB()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	owner := identity.Guest("guest_123")

	first, created, err := svc.Add(ctx, owner, 7)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Add(ctx, owner, 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.Favorite{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListAndRemove(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)
	ctx := context.Background()
	owner := identity.Guest("guest_123")

	for _, id := range []int64{1, 2} {
		_, _, err := svc.Add(ctx, owner, id)
		require.NoError(t, err)
	}
	_, _, err = svc.Add(ctx, identity.Guest("other"), 1)
	require.NoError(t, err)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list.Favorites, 2)

	require.NoError(t, svc.Remove(ctx, owner, 1))
	require.NoError(t, svc.Remove(ctx, owner, 1), "second removal is a no-op")

	list, err = svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list.Favorites, 1)
	assert.Equal(t, int64(2), list.Favorites[0].ProductID)
}

func TestValidation(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = svc.Add(ctx, identity.Guest("guest_123"), 0)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.Is(svc.Remove(ctx, identity.Guest("guest_123"), -3), pkgerrors.CodeValidation))
	_, err = svc.List(ctx, identity.Owner{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}
