// Package repo holds the connection plumbing shared by storefront repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by repositories that run against either the pool or an
// open transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
