package profile

import (
	"strings"

	"github.com/velora-shop/storefront-backend/pkg/db/models"
)

// IsComplete reports whether the profile carries every field checkout needs:
// phone number, pin code, state, street address, and city. Whitespace-only
// values do not count.
func IsComplete(p *models.Profile) bool {
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
