package profile

import (
	"github.com/google/uuid"
	"github.com/ojastore/storefront-backend/pkg/db/models"
)

// ProfileDTO is the GET/PUT /profile payload. Unset fields are null.
type ProfileDTO struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	AddressLine1 *string   `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	PostalCode   *string   `json:"postalCode"`
	Country      *string   `json:"country"`
}

// UpdateRequest replaces every editable field; omitted fields are cleared.
type UpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	AddressLine1 *string `json:"addressLine1" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=200"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postalCode" validate:"omitempty,max=20"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
}

func FromModel(u *models.User) ProfileDTO {
	return ProfileDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AddressLine1: u.AddressLine1,
		AddressLine2: u.AddressLine2,
		City:         u.City,
		State:        u.State,
		PostalCode:   u.PostalCode,
		Country:      u.Country,
	}
}
