package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/pkg/db/models"
	"github.com/velora-shop/storefront-backend/pkg/types"
)

// ProfileDTO is the transport shape for a storefront profile.
type ProfileDTO struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	PhoneNumber        *string   `json:"phone_number,omitempty"`
	UserAddress        *string   `json:"user_address,omitempty"`
	City               *string   `json:"city,omitempty"`
	Country            *string   `json:"country,omitempty"`
	StateName          *string   `json:"state_name,omitempty"`
	PinCode            *string   `json:"pin_code,omitempty"`
	IsProfileCompleted bool      `json:"is_profile_completed"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpdateProfileInput carries a partial profile mutation. Absent fields are
// left untouched; explicit nulls clear the column.
type UpdateProfileInput struct {
	Name        types.NullableString `json:"name"`
	PhoneNumber types.NullableString `json:"phone_number"`
	UserAddress types.NullableString `json:"user_address"`
	City        types.NullableString `json:"city"`
	Country     types.NullableString `json:"country"`
	StateName   types.NullableString `json:"state_name"`
	PinCode     types.NullableString `json:"pin_code"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:                 p.ID,
		UserID:             p.UserID,
		Name:               p.Name,
		Email:              p.Email,
		Role:               p.Role,
		PhoneNumber:        p.PhoneNumber,
		UserAddress:        p.UserAddress,
		City:               p.City,
		Country:            p.Country,
		StateName:          p.StateName,
		PinCode:            p.PinCode,
		IsProfileCompleted: IsComplete(p),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
