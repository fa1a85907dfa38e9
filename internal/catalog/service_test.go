package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-backend/pkg/config"
	"github.com/velora-shop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()

	repo := NewRepository(openTestDB(t))
	svc, err := NewService(repo, config.CatalogConfig{DefaultPageSize: 50, MaxPageSize: 200})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount int
		want     string
	}{
		{"no discount", "100", 0, "100"},
		{"ten percent", "100", 10, "90"},
		{"rounds to nearest", "999", 15, "849"}, // 999 - 149.85 = 849.15
		{"half rounds up", "50", 25, "38"},      // 50 - 12.5 = 37.5
		{"full discount", "80", 100, "0"},
		{"out of range ignored", "80", 120, "80"},
		{"negative ignored", "80", -5, "80"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price := decimal.RequireFromString(tc.price)
			got := DiscountedPrice(price, tc.discount)
			if got.String() != tc.want {
				t.Fatalf("DiscountedPrice(%s, %d) = %s, want %s", tc.price, tc.discount, got, tc.want)
			}
		})
	}
}

func TestGetProductDerivesDiscount(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seeded, err := repo.Insert(ctx, &models.Product{
		ID:              uuid.New(),
		Name:            "Wool Scarf",
		Slug:            "wool-scarf",
		Price:           decimal.NewFromInt(90),
		DiscountPercent: 10,
		StockQuantity:   3,
		TrackQuantity:   true,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	dto, err := svc.GetProduct(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !dto.HasDiscount {
		t.Fatal("expected discount flag")
	}
	if dto.DiscountedPrice.String() != "81" {
		t.Fatalf("expected discounted price 81, got %s", dto.DiscountedPrice)
	}
	if !dto.InStock {
		t.Fatal("expected product in stock")
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected typed not-found error, got %v", err)
	}
}

func TestListProductsDefaultsLimit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, &models.Product{
		ID:       uuid.New(),
		Name:     "Denim Jacket",
		Slug:     "denim-jacket",
		Price:    decimal.NewFromInt(200),
		IsActive: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dtos, err := svc.ListProducts(ctx, ListProductsInput{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 product, got %d", len(dtos))
	}
	if dtos[0].DiscountedPrice.String() != "200" {
		t.Fatalf("undiscounted product should keep its price, got %s", dtos[0].DiscountedPrice)
	}
}
