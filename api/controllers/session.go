package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ojastore/storefront-backend/api/responses"
	"github.com/ojastore/storefront-backend/api/validators"
	pkgAuth "github.com/ojastore/storefront-backend/pkg/auth"
	"github.com/ojastore/storefront-backend/pkg/auth/session"
	"github.com/ojastore/storefront-backend/pkg/config"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

type sessionTokenRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// sessionAction runs with the claims of the presented access token, which
// may already be expired.
type sessionAction func(w http.ResponseWriter, r *http.Request, claims *pkgAuth.AccessTokenClaims) error

func withSessionClaims(manager sessionTokenRotator, cfg config.JWTConfig, logg *logger.Logger, action sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := serviceUnavailable("session")
		if manager != nil {
			var claims *pkgAuth.AccessTokenClaims
			if claims, err = staleClaims(r, cfg); err == nil {
				err = action(w, r, claims)
			}
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

func staleClaims(r *http.Request, cfg config.JWTConfig) (*pkgAuth.AccessTokenClaims, error) {
	token := pkgAuth.TokenFromRequest(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}

// AuthLogout revokes the refresh session keyed by the token's jti.
func AuthLogout(manager sessionTokenRotator, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return withSessionClaims(manager, cfg, logg, func(w http.ResponseWriter, r *http.Request, claims *pkgAuth.AccessTokenClaims) error {
		if err := manager.Revoke(r.Context(), claims.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
		}
		responses.WriteSuccess(w, removedResponse{Success: true})
		return nil
	})
}

// AuthRefresh trades a refresh token for a new pair. The old refresh token
// stops working whether or not it matched.
func AuthRefresh(manager sessionTokenRotator, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return withSessionClaims(manager, cfg, logg, func(w http.ResponseWriter, r *http.Request, claims *pkgAuth.AccessTokenClaims) error {
		var body refreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}

		jti, refresh, err := manager.Rotate(r.Context(), claims.ID, body.RefreshToken)
		switch {
		case errors.Is(err, session.ErrInvalidRefreshToken):
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
		}

		access, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
			UserID: claims.UserID,
			Email:  claims.Email,
			JTI:    jti,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
		}

		w.Header().Set(accessTokenHeader, access)
		responses.WriteSuccess(w, refreshResponse{AccessToken: access, RefreshToken: refresh})
		return nil
	})
}
