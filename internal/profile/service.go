package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
	"github.com/velora-shop/storefront-backend/pkg/types"
)

// Service exposes profile read/update operations for the signed-in user.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	EnsureProfile(ctx context.Context, user *models.User) (*ProfileDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a profile service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return FromModel(profile), nil
}

// EnsureProfile creates the user's profile row on first access.
func (s *service) EnsureProfile(ctx context.Context, user *models.User) (*ProfileDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}
	existing, err := s.repo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}
	if existing != nil {
		return FromModel(existing), nil
	}

	created, err := s.repo.Insert(ctx, &models.Profile{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   user.DisplayName,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating profile")
	}
	return FromModel(created), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	fields := map[string]any{}
	if input.Name.Valid {
		name := ""
		if input.Name.Value != nil {
			name = strings.TrimSpace(*input.Name.Value)
		}
		fields["name"] = name
	}
	applyNullable(fields, "phone_number", input.PhoneNumber)
	applyNullable(fields, "user_address", input.UserAddress)
	applyNullable(fields, "city", input.City)
	applyNullable(fields, "country", input.Country)
	applyNullable(fields, "state_name", input.StateName)
	applyNullable(fields, "pin_code", input.PinCode)

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile")
		}
	}

	updated, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading profile")
	}
	return FromModel(updated), nil
}

func applyNullable(fields map[string]any, column string, value types.NullableString) {
	if !value.Valid {
		return
	}
	if value.Value == nil {
		fields[column] = nil
		return
	}
	fields[column] = value.TrimmedValue()
}
