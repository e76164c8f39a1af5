package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ctxKey struct{}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_base?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestBaseDBCarriesRequestContext(t *testing.T) {
	conn := openSQLite(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "owner-1")
	bound := base.DB(ctx)
	require.NotNil(t, bound.Statement)
	require.Equal(t, ctx, bound.Statement.Context)
}

func TestBaseDBWithoutContextReturnsHandle(t *testing.T) {
	conn := openSQLite(t)
	base := NewBase(conn)

	//nolint:staticcheck // nil ctx is the documented raw-handle path
	require.Same(t, conn, base.DB(nil))
}

func TestBaseTransactionScope(t *testing.T) {
	conn := openSQLite(t)
	require.NoError(t, conn.Exec("CREATE TABLE IF NOT EXISTS marks (id INTEGER PRIMARY KEY)").Error)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return NewBase(tx).DB(context.Background()).Exec("INSERT INTO marks (id) VALUES (1)").Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, NewBase(conn).DB(context.Background()).Table("marks").Count(&count).Error)
	require.EqualValues(t, 1, count)
}
