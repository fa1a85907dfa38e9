package profile

import (
	"testing"

	"github.com/velora-shop/storefront-backend/pkg/db/models"
)

func strPtr(s string) *string { return &s }

func fullProfile() *models.Profile {
	return &models.Profile{
		PhoneNumber: strPtr("555-0100"),
		PinCode:     strPtr("560001"),
		StateName:   strPtr("Karnataka"),
		UserAddress: strPtr("12 MG Road"),
		City:        strPtr("Bengaluru"),
	}
}

func TestIsComplete(t *testing.T) {
	if !IsComplete(fullProfile()) {
		t.Fatal("expected full profile to be complete")
	}
	if IsComplete(nil) {
		t.Fatal("nil profile cannot be complete")
	}

	mutations := map[string]func(*models.Profile){
		"missing phone":       func(p *models.Profile) { p.PhoneNumber = nil },
		"missing pin":         func(p *models.Profile) { p.PinCode = nil },
		"missing state":       func(p *models.Profile) { p.StateName = nil },
		"missing address":     func(p *models.Profile) { p.UserAddress = nil },
		"missing city":        func(p *models.Profile) { p.City = nil },
		"whitespace city":     func(p *models.Profile) { p.City = strPtr("   ") },
		"empty phone":         func(p *models.Profile) { p.PhoneNumber = strPtr("") },
		"whitespace pin code": func(p *models.Profile) { p.PinCode = strPtr("\t") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := fullProfile()
			mutate(p)
			if IsComplete(p) {
				t.Fatal("expected incomplete profile")
			}
		})
	}

	// Country is not part of the completeness check.
	p := fullProfile()
	p.Country = nil
	if !IsComplete(p) {
		t.Fatal("country must not affect completeness")
	}
}
