package session

import (
	"strings"

	"github.com/velora-shop/storefront-backend/internal/profile"
)

// AuthUser is the normalized identity record owned by the Manager.
type AuthUser struct {
	ID                 string              `json:"id"`
	Email              string              `json:"email"`
	EmailVerified      bool                `json:"email_verified"`
	PhoneVerified      bool                `json:"phone_verified"`
	Role               string              `json:"role"`
	DisplayName        *string             `json:"display_name,omitempty"`
	IsLoggedIn         bool                `json:"is_logged_in"`
	Profile            *profile.ProfileDTO `json:"profile,omitempty"`
	IsProfileCompleted bool                `json:"is_profile_completed"`
}

func (u *AuthUser) clone() *AuthUser {
	if u == nil {
		return nil
	}
	copied := *u
	if u.DisplayName != nil {
		name := *u.DisplayName
		copied.DisplayName = &name
	}
	if u.Profile != nil {
		prof := *u.Profile
		copied.Profile = &prof
	}
	return &copied
}

// RemoteUser carries the identity fields extracted from a remote session.
type RemoteUser struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	EmailVerified bool    `json:"email_verified"`
	PhoneVerified bool    `json:"phone_verified"`
	Role          string  `json:"role"`
	DisplayName   *string `json:"display_name,omitempty"`
}

// LoginData is the partial identity merged onto the previous user at login.
// Nil fields leave the prior value untouched; HasDetails distinguishes an
// explicit null profile from an absent one.
type LoginData struct {
	User               *RemoteUser
	Details            *profile.ProfileDTO
	HasDetails         bool
	IsLoggedIn         *bool
	IsProfileCompleted *bool
	AccessToken        *string

	// Redirect is a navigation hint passed through to subscribers on the
	// login event. The manager never acts on it itself.
	Redirect string
}

// Event is delivered to subscribers after every identity change.
type Event struct {
	State    State
	Redirect string
}

// AuthUpdates is the partial mutation applied by UpdateAuth.
type AuthUpdates struct {
	Email              *string
	DisplayName        *string
	IsLoggedIn         *bool
	IsProfileCompleted *bool
	Profile            *profile.ProfileDTO
	HasProfile         bool
}

// State is the read-only view handed to consumers.
type State struct {
	User    *AuthUser
	Loading bool
}

// LoggedIn reports whether an authenticated user is present.
func (s State) LoggedIn() bool {
	return s.User != nil && s.User.IsLoggedIn
}

// ProfileCompleted derives the checkout-readiness flag. The profile record
// wins when present; otherwise the merged flag on the user is trusted.
func (s State) ProfileCompleted() bool {
	if s.User == nil {
		return false
	}
	if s.User.Profile != nil {
		return profileComplete(s.User.Profile)
	}
	return s.User.IsProfileCompleted
}

func profileComplete(p *profile.ProfileDTO) bool {
	if p == nil {
		return false
	}
	for _, field := range []*string{p.PhoneNumber, p.PinCode, p.StateName, p.UserAddress, p.City} {
		if field == nil || strings.TrimSpace(*field) == "" {
			return false
		}
	}
	return true
}
