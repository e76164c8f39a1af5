// Package identity maps a visitor to the owner reference that scopes cart,
// favorite and order rows: an account id or a guest session token.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	KindAccount = "account"
	KindGuest   = "guest"

	guestTokenPrefix    = "session_"
	guestTokenRandomLen = 9
	maxGuestTokenLen    = 128
)

// Owner identifies who a row belongs to. Exactly one field is set.
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

func Account(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

func Guest(token string) Owner {
	return Owner{SessionID: strings.TrimSpace(token)}
}

func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// Valid reports whether the owner carries exactly one usable identifier.
func (o Owner) Valid() bool {
	if o.UserID != nil {
		return *o.UserID != uuid.Nil && o.SessionID == ""
	}
	return strings.TrimSpace(o.SessionID) != ""
}

func (o Owner) Kind() string {
	if o.IsGuest() {
		return KindGuest
	}
	return KindAccount
}

// Key is a stable string form used for logging scopes and idempotency keys.
func (o Owner) Key() string {
	if o.UserID != nil {
		return "user:" + o.UserID.String()
	}
	return "session:" + o.SessionID
}

// Columns returns the values stored in the user_id and session_id columns.
func (o Owner) Columns() (*uuid.UUID, *string) {
	if o.UserID != nil {
		id := *o.UserID
		return &id, nil
	}
	token := o.SessionID
	return nil, &token
}

// Scope restricts a query to rows owned by o.
func (o Owner) Scope(db *gorm.DB) *gorm.DB {
	if o.UserID != nil {
		return db.Where("user_id = ?", *o.UserID)
	}
	return db.Where("session_id = ?", o.SessionID)
}

// Require returns an UNAUTHORIZED error for a missing or blank owner.
func (o Owner) Require() error {
	if !o.Valid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}
	return nil
}

// NewGuestToken generates session_<unix millis>_<random>.
func NewGuestToken(now time.Time) (string, error) {
	suffix, err := security.RandomString(guestTokenRandomLen)
	if err != nil {
		return "", fmt.Errorf("generate guest token: %w", err)
	}
	return fmt.Sprintf("%s%d_%s", guestTokenPrefix, now.UnixMilli(), suffix), nil
}

// ValidGuestToken rejects blank, oversized or non-printable cookie values.
func ValidGuestToken(token string) bool {
	if token == "" || len(token) > maxGuestTokenLen {
		return false
	}
	for _, r := range token {
		if r <= ' ' || r > '~' || r == ';' || r == ',' {
			return false
		}
	}
	return true
}

type ctxKey struct{}

// WithOwner stores the resolved owner on the context.
func WithOwner(ctx context.Context, owner Owner) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

// FromContext returns the owner resolved for the request, if any.
func FromContext(ctx context.Context) (Owner, bool) {
	if ctx == nil {
		return Owner{}, false
	}
	owner, ok := ctx.Value(ctxKey{}).(Owner)
	return owner, ok
}
