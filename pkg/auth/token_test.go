package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "velora",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := AccessTokenPayload{
		UserID: userID,
		Email:  "shopper@example.com",
		Role:   "USER",
		JTI:    "access-1",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "shopper@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != "USER" {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti to survive, got %q", claims.ID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now().UTC()
	base := config.JWTConfig{Secret: "secret", Issuer: "velora", ExpirationMinutes: 30}

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
		wantMsg string
	}{
		{"missing secret", config.JWTConfig{Issuer: "velora", ExpirationMinutes: 30}, AccessTokenPayload{Role: "USER"}, "secret"},
		{"missing issuer", config.JWTConfig{Secret: "secret", ExpirationMinutes: 30}, AccessTokenPayload{Role: "USER"}, "issuer"},
		{"bad expiry", config.JWTConfig{Secret: "secret", Issuer: "velora"}, AccessTokenPayload{Role: "USER"}, "expiration"},
		{"missing role", base, AccessTokenPayload{}, "role"},
	}

	for _, tc := range cases {
		if _, err := MintAccessToken(tc.cfg, now, tc.payload); err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.wantMsg, err)
		}
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "velora", ExpirationMinutes: 1}
	past := time.Now().UTC().Add(-time.Hour)

	token, err := MintAccessToken(cfg, past, AccessTokenPayload{UserID: uuid.New(), Role: "USER"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("expected expired parse to succeed for refresh, got %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected jti on expired claims")
	}
}
