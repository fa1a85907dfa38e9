package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-backend/internal/catalog"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

func testItem(productID, color, size string, qty int, price int64, discount int) LineItem {
	p := decimal.NewFromInt(price)
	return LineItem{
		ProductID:       productID,
		Name:            "Item " + productID,
		Price:           p,
		Size:            size,
		Color:           color,
		Quantity:        qty,
		DiscountPercent: discount,
		CalculatedPrice: catalog.DiscountedPrice(p, discount),
		StockQuantity:   10,
	}
}

func TestAddMergesMatchingVariant(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	store.Add(testItem("p1", "red", "M", 2, 100, 0))

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected merged entry, got %d entries", len(entries))
	}
	if entries[0].Item.Quantity != 3 {
		t.Fatalf("expected summed quantity 3, got %d", entries[0].Item.Quantity)
	}
}

func TestAddKeepsDistinctVariantsSeparate(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	store.Add(testItem("p1", "blue", "M", 1, 100, 0))
	store.Add(testItem("p1", "red", "L", 1, 100, 0))

	if got := store.Len(); got != 3 {
		t.Fatalf("expected 3 distinct entries, got %d", got)
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	store.Add(testItem("p2", "red", "M", 1, 100, 0))
	store.Add(testItem("p1", "red", "M", 1, 100, 0)) // merges into first

	entries := store.Entries()
	if entries[0].Item.ProductID != "p1" || entries[1].Item.ProductID != "p2" {
		t.Fatalf("merge must not reorder entries: %v, %v", entries[0].Item.ProductID, entries[1].Item.ProductID)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))

	qty := 4
	if err := store.UpdateItem(0, ItemChanges{Quantity: &qty}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := store.Entries()[0].Item.Quantity; got != 4 {
		t.Fatalf("expected quantity 4, got %d", got)
	}

	zero := 0
	if err := store.UpdateItem(0, ItemChanges{Quantity: &zero}); err == nil {
		t.Fatal("expected rejection of quantity below 1")
	}
}

func TestOutOfRangeIndicesAreTypedErrors(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))

	qty := 2
	for name, err := range map[string]error{
		"update negative": store.UpdateItem(-1, ItemChanges{Quantity: &qty}),
		"update past end": store.UpdateItem(1, ItemChanges{Quantity: &qty}),
		"remove past end": store.Remove(5),
		"select past end": store.SetSelected(3, true),
		"toggle negative": store.ToggleSelected(-2),
	} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	if store.Len() != 1 {
		t.Fatal("failed mutations must not change the cart")
	}
}

func TestRemoveShiftsLaterEntries(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	store.Add(testItem("p2", "red", "M", 1, 100, 0))
	store.Add(testItem("p3", "red", "M", 1, 100, 0))
	if err := store.SetSelected(2, false); err != nil {
		t.Fatalf("deselect: %v", err)
	}

	if err := store.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Item.ProductID != "p1" {
		t.Fatal("entries before the removed index must be unchanged")
	}
	if entries[1].Item.ProductID != "p3" {
		t.Fatal("entries after the removed index must shift down")
	}
	// Selection travels with its item, not its old index.
	if entries[0].Selected != true || entries[1].Selected != false {
		t.Fatalf("selection desynchronized after removal: %+v", entries)
	}
}

func TestClear(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	store.Clear()
	if store.Len() != 0 {
		t.Fatal("expected empty cart after clear")
	}
	totals := store.Totals()
	if !totals.Subtotal.IsZero() || totals.ItemCount != 0 {
		t.Fatalf("expected zero totals after clear: %+v", totals)
	}
}

func TestTotalsScenario(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 1, 100, 10))

	totals := store.Totals()
	if totals.Subtotal.String() != "90" {
		t.Fatalf("discounted subtotal = %s, want 90", totals.Subtotal)
	}
	if totals.OriginalSubtotal.String() != "100" {
		t.Fatalf("pre-discount subtotal = %s, want 100", totals.OriginalSubtotal)
	}
	if totals.Savings.String() != "10" {
		t.Fatalf("savings = %s, want 10", totals.Savings)
	}
}

func TestDiscountedNeverExceedsOriginal(t *testing.T) {
	store := NewStore()
	store.Add(testItem("p1", "red", "M", 2, 150, 25))
	store.Add(testItem("p2", "blue", "S", 1, 999, 0))
	store.Add(testItem("p3", "green", "L", 3, 80, 100))

	for _, selections := range [][]bool{
		{true, true, true},
		{true, false, true},
		{false, true, false},
		{false, false, false},
	} {
		for i, sel := range selections {
			if err := store.SetSelected(i, sel); err != nil {
				t.Fatalf("select: %v", err)
			}
		}
		totals := store.Totals()
		if totals.Subtotal.GreaterThan(totals.OriginalSubtotal) {
			t.Fatalf("discounted subtotal %s exceeds original %s for %v", totals.Subtotal, totals.OriginalSubtotal, selections)
		}
	}

	// Equality holds exactly when every selected item is undiscounted.
	store.SelectAll(false)
	if err := store.SetSelected(1, true); err != nil {
		t.Fatalf("select undiscounted: %v", err)
	}
	totals := store.Totals()
	if !totals.Subtotal.Equal(totals.OriginalSubtotal) {
		t.Fatal("expected equality when only the undiscounted item is selected")
	}
}

func TestCheckoutGateCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		hasSelection := mask&1 != 0
		positiveSubtotal := mask&2 != 0
		loggedIn := mask&4 != 0
		profileComplete := mask&8 != 0

		// A selected full-discount item yields a zero subtotal; selection
		// and positive-subtotal conditions are exercised independently.
		store := NewStore()
		if positiveSubtotal {
			store.Add(testItem("p1", "red", "M", 1, 100, 10))
		} else {
			store.Add(testItem("p1", "red", "M", 1, 100, 100))
		}
		if !hasSelection {
			store.SelectAll(false)
		}

		want := hasSelection && positiveSubtotal && loggedIn && profileComplete
		if got := store.CheckoutAllowed(loggedIn, profileComplete); got != want {
			t.Fatalf("mask %04b: CheckoutAllowed = %v, want %v", mask, got, want)
		}
	}

	// The empty cart fails the gate regardless of the other conditions.
	if NewStore().CheckoutAllowed(true, true) {
		t.Fatal("empty cart must not allow checkout")
	}
}

func TestSubscribeFiresOnMutations(t *testing.T) {
	store := NewStore()
	var fired int
	unsubscribe := store.Subscribe(func() { fired++ })

	store.Add(testItem("p1", "red", "M", 1, 100, 0))
	qty := 2
	if err := store.UpdateItem(0, ItemChanges{Quantity: &qty}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.ToggleSelected(0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	store.Clear()

	if fired != 4 {
		t.Fatalf("expected 4 notifications, got %d", fired)
	}

	unsubscribe()
	store.Add(testItem("p2", "red", "M", 1, 100, 0))
	if fired != 4 {
		t.Fatal("unsubscribed listener still firing")
	}
}

func TestRegistryIsolatesShoppers(t *testing.T) {
	registry := NewRegistry()

	a := registry.GetOrCreate("user-a")
	b := registry.GetOrCreate("user-b")
	if a == b {
		t.Fatal("expected distinct stores per shopper")
	}
	if again := registry.GetOrCreate("user-a"); again != a {
		t.Fatal("expected a stable store per key")
	}

	a.Add(testItem("p1", "red", "M", 1, 100, 0))
	if b.Len() != 0 {
		t.Fatal("shoppers must not share cart state")
	}

	registry.Drop("user-a")
	if registry.GetOrCreate("user-a") == a {
		t.Fatal("dropped key must get a fresh store")
	}

	if registry.GetOrCreate("  ") != nil {
		t.Fatal("blank keys must not allocate carts")
	}
}
