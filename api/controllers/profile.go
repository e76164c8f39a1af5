package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ojastore/storefront-backend/api/responses"
	"github.com/ojastore/storefront-backend/api/validators"
	"github.com/ojastore/storefront-backend/internal/profile"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

type profileResponse struct {
	Profile profile.ProfileDTO `json:"profile"`
}

func accountFromRequest(r *http.Request) (uuid.UUID, error) {
	owner, err := ownerFromRequest(r)
	if err != nil {
		return uuid.Nil, err
	}
	if owner.IsGuest() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return *owner.UserID, nil
}

func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("profile"))
			return
		}
		userID, err := accountFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileResponse{Profile: dto})
	}
}

// ProfileUpdate replaces every name and address field; omitted fields clear.
func ProfileUpdate(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("profile"))
			return
		}
		userID, err := accountFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body profile.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileResponse{Profile: dto})
	}
}
