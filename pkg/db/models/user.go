package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account record. Profile fields live on the same row.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Name         *string    `gorm:"column:name"`
	AddressLine1 *string    `gorm:"column:address_line1"`
	AddressLine2 *string    `gorm:"column:address_line2"`
	City         *string    `gorm:"column:city"`
	State        *string    `gorm:"column:state"`
	PostalCode   *string    `gorm:"column:postal_code"`
	Country      *string    `gorm:"column:country"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
