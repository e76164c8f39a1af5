package controllers

import (
	"net/http"

	"github.com/ojastore/storefront-backend/internal/identity"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

func ownerFromRequest(r *http.Request) (identity.Owner, error) {
	owner, ok := identity.FromContext(r.Context())
	if !ok {
		return identity.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}
	if err := owner.Require(); err != nil {
		return identity.Owner{}, err
	}
	return owner, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
