package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/internal/profile"
	pkgauth "github.com/velora-shop/storefront-backend/pkg/auth"
	"github.com/velora-shop/storefront-backend/pkg/auth/session"
	"github.com/velora-shop/storefront-backend/pkg/config"
	"github.com/velora-shop/storefront-backend/pkg/db"
	"github.com/velora-shop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

type fakeSessionManager struct {
	sessions map[string]string
	counter  int
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: make(map[string]string)}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.counter++
	token := fmt.Sprintf("refresh-%d", f.counter)
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	token, _ := f.Generate(ctx, newAccessID)
	return newAccessID, token, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(f.sessions, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "velora-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newTestService(t *testing.T) (Service, *db.Client, *fakeSessionManager) {
	t.Helper()

	dsn := fmt.Sprintf("file:identity-%s?mode=memory&cache=shared", uuid.NewString()[:8])
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := client.DB().AutoMigrate(&models.User{}, &models.Profile{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       NewRepository(client.DB()),
		DB:             client,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, client, sessions
}

func TestSignUpCreatesUserAndProfile(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, SignUpRequest{
		Email:       "Shopper@Example.com",
		Password:    "correct-horse",
		DisplayName: "Shopper",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if sess.User == nil || sess.User.Email != "shopper@example.com" {
		t.Fatalf("email not normalized: %+v", sess.User)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("expected issued token pair")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), sess.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != sess.User.ID {
		t.Fatal("token subject mismatch")
	}

	stored, err := profile.NewRepository(client.DB()).FindByUserID(ctx, sess.User.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if stored == nil || stored.Email != "shopper@example.com" {
		t.Fatalf("profile not created alongside user: %+v", stored)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := SignUpRequest{Email: "dupe@example.com", Password: "correct-horse", DisplayName: "One"}
	if _, err := svc.SignUp(ctx, req); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	_, err := svc.SignUp(ctx, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignInWithPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{
		Email:       "login@example.com",
		Password:    "correct-horse",
		DisplayName: "Login",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	sess, err := svc.SignInWithPassword(ctx, SignInRequest{
		Email:    "login@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.User.LastLoginAt == nil {
		t.Fatal("expected last login recorded")
	}

	_, err = svc.SignInWithPassword(ctx, SignInRequest{
		Email:    "login@example.com",
		Password: "wrong",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("credential errors must not leak detail, got %q", typed.Message())
	}

	_, err = svc.SignInWithPassword(ctx, SignInRequest{
		Email:    "unknown@example.com",
		Password: "whatever",
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, SignUpRequest{
		Email:       "refresh@example.com",
		Password:    "correct-horse",
		DisplayName: "Refresh",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	renewed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renewed.RefreshToken == sess.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}
	if renewed.User.ID != sess.User.ID {
		t.Fatal("refresh must keep the same user")
	}

	// The old pair is dead after rotation.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized replaying old pair, got %v", err)
	}

	if len(sessions.sessions) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.sessions))
	}
}

func TestLogoutRevokes(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, SignUpRequest{
		Email:       "logout@example.com",
		Password:    "correct-horse",
		DisplayName: "Logout",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), sess.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("expected session removed on logout")
	}

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

