// Package profile reads and replaces the name and address of the signed-in
// account.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/internal/users"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (ProfileDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields users.ProfileFields) (*models.User, error)
}

type service struct {
	users userRepository
}

func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repository is required")
	}
	return &service{users: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ProfileDTO{}, profileError(err, "load profile")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account required")
	}
	user, err := s.users.UpdateProfile(ctx, userID, users.ProfileFields{
		Name:         clean(req.Name),
		AddressLine1: clean(req.AddressLine1),
		AddressLine2: clean(req.AddressLine2),
		City:         clean(req.City),
		State:        clean(req.State),
		PostalCode:   clean(req.PostalCode),
		Country:      clean(req.Country),
	})
	if err != nil {
		return ProfileDTO{}, profileError(err, "update profile")
	}
	return FromModel(user), nil
}

func profileError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
	}
	return db.ClassifyError(err, msg)
}

// clean trims v and maps blank input to nil.
func clean(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
