package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/api/responses"
	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/pkg/config"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

// IdentityOptions configures the guest session cookie.
type IdentityOptions struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	// NewToken overrides guest token generation.
	NewToken func(now time.Time) (string, error)
}

// IdentityOptionsFromConfig derives cookie settings; the cookie is Secure in
// production.
func IdentityOptionsFromConfig(cfg *config.Config) IdentityOptions {
	return IdentityOptions{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.App.IsProd(),
	}
}

// Identity resolves the owner for cart, favorite and order rows. An
// authenticated account wins; otherwise the guest cookie is read or issued.
// A request that cannot be tied to any owner is rejected with 401.
func Identity(opts IdentityOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = "session-id"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 365 * 24 * time.Hour
	}
	if opts.NewToken == nil {
		opts.NewToken = identity.NewGuestToken
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := resolveOwner(w, r, opts)
			if err == nil {
				err = owner.Require()
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := identity.WithOwner(r.Context(), owner)
			if logg != nil {
				id := ""
				if owner.UserID != nil {
					id = owner.UserID.String()
				}
				ctx = logg.WithOwner(ctx, owner.Kind(), id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveOwner(w http.ResponseWriter, r *http.Request, opts IdentityOptions) (identity.Owner, error) {
	if raw := UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return identity.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session")
		}
		return identity.Account(userID), nil
	}

	if cookie, err := r.Cookie(opts.CookieName); err == nil && identity.ValidGuestToken(cookie.Value) {
		return identity.Guest(cookie.Value), nil
	}

	token, err := opts.NewToken(time.Now())
	if err != nil {
		return identity.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session")
	}
	token = strings.TrimSpace(token)
	if !identity.ValidGuestToken(token) {
		return identity.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return identity.Guest(token), nil
}

// RequireAccount rejects requests whose owner is a guest.
func RequireAccount(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, ok := identity.FromContext(r.Context())
			if !ok || owner.IsGuest() || !owner.Valid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
