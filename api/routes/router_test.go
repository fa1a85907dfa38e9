package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-backend/internal/cart"
	"github.com/velora-shop/storefront-backend/internal/catalog"
	"github.com/velora-shop/storefront-backend/internal/identity"
	"github.com/velora-shop/storefront-backend/internal/profile"
	pkgauth "github.com/velora-shop/storefront-backend/pkg/auth"
	"github.com/velora-shop/storefront-backend/pkg/auth/session"
	"github.com/velora-shop/storefront-backend/pkg/config"
	"github.com/velora-shop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubIdentity struct{}

func (stubIdentity) SignUp(context.Context, identity.SignUpRequest) (*identity.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubIdentity) SignInWithPassword(context.Context, identity.SignInRequest) (*identity.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubIdentity) Refresh(context.Context, identity.RefreshRequest) (*identity.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubIdentity) Logout(context.Context, string) error {
	return nil
}

func (stubIdentity) GetUser(context.Context, uuid.UUID) (*identity.UserDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

type stubCatalog struct {
	product *catalog.ProductDTO
}

func (s stubCatalog) ListProducts(context.Context, catalog.ListProductsInput) ([]catalog.ProductDTO, error) {
	if s.product == nil {
		return nil, nil
	}
	return []catalog.ProductDTO{*s.product}, nil
}

func (s stubCatalog) GetProduct(context.Context, uuid.UUID) (*catalog.ProductDTO, error) {
	if s.product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

func (s stubCatalog) GetProductBySlug(context.Context, string) (*catalog.ProductDTO, error) {
	return s.GetProduct(context.Background(), uuid.Nil)
}

type stubProfiles struct {
	completed bool
}

func (s stubProfiles) GetProfile(context.Context, uuid.UUID) (*profile.ProfileDTO, error) {
	return &profile.ProfileDTO{IsProfileCompleted: s.completed}, nil
}

func (s stubProfiles) UpdateProfile(context.Context, uuid.UUID, profile.UpdateProfileInput) (*profile.ProfileDTO, error) {
	return &profile.ProfileDTO{IsProfileCompleted: s.completed}, nil
}

func (s stubProfiles) EnsureProfile(context.Context, *models.User) (*profile.ProfileDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{
		Secret:                 "test-secret-please-rotate-0123456789",
		Issuer:                 "velora-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 120,
	}
	return cfg
}

func testRouter(t *testing.T, product *catalog.ProductDTO, profileCompleted bool) http.Handler {
	t.Helper()
	handler, err := NewRouter(Deps{
		Config:         testConfig(),
		SessionManager: stubSessionChecker{},
		Identity:       stubIdentity{},
		Catalog:        stubCatalog{product: product},
		Profiles:       stubProfiles{completed: profileCompleted},
		Carts:          cart.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return handler
}

func mintToken(t *testing.T, cfg *config.Config, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "shopper@example.com",
		Role:   "USER",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func authedRequest(handler http.Handler, token, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func testProduct() *catalog.ProductDTO {
	price := decimal.RequireFromString("100")
	return &catalog.ProductDTO{
		ID:              uuid.New(),
		Name:            "Linen Shirt",
		Slug:            "linen-shirt",
		Price:           price,
		DiscountPercent: 10,
		DiscountedPrice: decimal.RequireFromString("90"),
		HasDiscount:     true,
		Sizes:           []string{"M", "L"},
		StockQuantity:   5,
		InStock:         true,
	}
}

func TestHealthLive(t *testing.T) {
	handler := testRouter(t, nil, false)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Velora-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestPublicProductListing(t *testing.T) {
	handler := testRouter(t, testProduct(), false)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=true", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var payload struct {
		Data []catalog.ProductDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Slug != "linen-shirt" {
		t.Fatalf("unexpected products payload: %s", resp.Body.String())
	}
}

func TestCartRequiresAuth(t *testing.T) {
	handler := testRouter(t, testProduct(), false)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartFlowThroughRouter(t *testing.T) {
	product := testProduct()
	handler := testRouter(t, product, true)
	cfg := testConfig()
	token := mintToken(t, cfg, uuid.New())

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var reader *strings.Reader
		if body == "" {
			reader = strings.NewReader("")
		} else {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}

	addBody := fmt.Sprintf(`{"product_id":%q,"color":"navy","size":"M","quantity":2}`, product.ID)
	resp := do(http.MethodPost, "/api/v1/cart/items", addBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = do(http.MethodGet, "/api/v1/cart", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200 got %d", resp.Code)
	}
	var view struct {
		Data struct {
			Items  []cart.Entry `json:"items"`
			Totals cart.Totals  `json:"totals"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(view.Data.Items) != 1 || view.Data.Items[0].Item.Quantity != 2 {
		t.Fatalf("unexpected cart state: %s", resp.Body.String())
	}
	if !view.Data.Totals.Subtotal.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("expected subtotal 180, got %s", view.Data.Totals.Subtotal)
	}

	resp = do(http.MethodGet, "/api/v1/cart/checkout-eligibility", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("eligibility: expected 200 got %d", resp.Code)
	}
	var eligibility struct {
		Data struct {
			Allowed          bool `json:"allowed"`
			ProfileCompleted bool `json:"profile_completed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &eligibility); err != nil {
		t.Fatalf("decode eligibility: %v", err)
	}
	if !eligibility.Data.Allowed || !eligibility.Data.ProfileCompleted {
		t.Fatalf("expected checkout allowed, got %s", resp.Body.String())
	}

	resp = do(http.MethodDelete, "/api/v1/cart/items/0", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200 got %d", resp.Code)
	}

	resp = do(http.MethodDelete, "/api/v1/cart/items/0", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("remove from empty cart: expected 400 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func addItemBody(product *catalog.ProductDTO, quantity int) string {
	return fmt.Sprintf(`{"product_id":%q,"color":"navy","size":"M","quantity":%d}`, product.ID, quantity)
}

func cartItemCount(t *testing.T, resp *httptest.ResponseRecorder) int {
	t.Helper()
	var view struct {
		Data struct {
			Items []cart.Entry `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return len(view.Data.Items)
}

func TestCartSurvivesTokenRotation(t *testing.T) {
	product := testProduct()
	handler := testRouter(t, product, true)
	cfg := testConfig()

	shopper := uuid.New()
	before := mintToken(t, cfg, shopper)
	after := mintToken(t, cfg, shopper)

	resp := authedRequest(handler, before, http.MethodPost, "/api/v1/cart/items", addItemBody(product, 2))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = authedRequest(handler, after, http.MethodGet, "/api/v1/cart", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200 got %d", resp.Code)
	}
	if got := cartItemCount(t, resp); got != 1 {
		t.Fatalf("expected cart to survive token rotation with 1 item, got %d", got)
	}
}

func TestLogoutEvictsCart(t *testing.T) {
	product := testProduct()
	handler := testRouter(t, product, true)
	cfg := testConfig()

	shopper := uuid.New()
	token := mintToken(t, cfg, shopper)

	resp := authedRequest(handler, token, http.MethodPost, "/api/v1/cart/items", addItemBody(product, 1))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d", resp.Code)
	}

	resp = authedRequest(handler, token, http.MethodPost, "/api/v1/auth/logout", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = authedRequest(handler, mintToken(t, cfg, shopper), http.MethodGet, "/api/v1/cart", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200 got %d", resp.Code)
	}
	if got := cartItemCount(t, resp); got != 0 {
		t.Fatalf("expected cart evicted on logout, got %d items", got)
	}
}

func TestCartStockCeiling(t *testing.T) {
	product := testProduct() // stock quantity 5
	handler := testRouter(t, product, true)
	token := mintToken(t, testConfig(), uuid.New())

	resp := authedRequest(handler, token, http.MethodPost, "/api/v1/cart/items", addItemBody(product, 999))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("oversized add: expected 400 got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = authedRequest(handler, token, http.MethodPost, "/api/v1/cart/items", addItemBody(product, 3))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add within stock: expected 201 got %d", resp.Code)
	}

	// Merging onto the existing line must respect the ceiling too.
	resp = authedRequest(handler, token, http.MethodPost, "/api/v1/cart/items", addItemBody(product, 3))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("merged add beyond stock: expected 400 got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = authedRequest(handler, token, http.MethodPatch, "/api/v1/cart/items/0", `{"quantity":999}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("oversized update: expected 400 got %d", resp.Code)
	}

	resp = authedRequest(handler, token, http.MethodPatch, "/api/v1/cart/items/0", `{"quantity":5}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("update to stock limit: expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
}
