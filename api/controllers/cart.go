package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/api/middleware"
	"github.com/velora-shop/storefront-backend/api/responses"
	"github.com/velora-shop/storefront-backend/api/validators"
	"github.com/velora-shop/storefront-backend/internal/cart"
	"github.com/velora-shop/storefront-backend/internal/catalog"
	"github.com/velora-shop/storefront-backend/internal/profile"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
	"github.com/velora-shop/storefront-backend/pkg/logger"
)

// CartController groups the cart endpoints around the per-shopper registry.
// Carts are keyed by user id so they survive access-token rotation; sign-out
// evicts them (see SignOut), and a fresh sign-in starts with an empty cart.
type CartController struct {
	registry *cart.Registry
	catalog  catalog.Service
	profiles profile.Service
	logg     *logger.Logger
}

func NewCartController(registry *cart.Registry, catalogSvc catalog.Service, profileSvc profile.Service, logg *logger.Logger) (*CartController, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry is required")
	}
	if catalogSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service is required")
	}
	if profileSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile service is required")
	}
	return &CartController{registry: registry, catalog: catalogSvc, profiles: profileSvc, logg: logg}, nil
}

type cartView struct {
	Items  []cart.Entry `json:"items"`
	Totals cart.Totals  `json:"totals"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=1"`
}

type selectionRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}

// Get returns the cart contents and totals for the caller's session.
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// AddItem resolves the product and merges it into the cart. Adding the same
// product, color, and size again bumps the existing line's quantity.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var payload addItemRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	pid, err := uuid.Parse(payload.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
		return
	}

	product, err := c.catalog.GetProduct(r.Context(), pid)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if !product.InStock {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock"))
		return
	}
	// The bound applies to the merged line: adding to an existing
	// (product, color, size) entry bumps its quantity.
	if err := checkStockCeiling(product.StockQuantity, heldQuantity(store, product.ID.String(), payload.Color, payload.Size)+payload.Quantity); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	item, err := cart.NewLineItem(product, payload.Color, payload.Size, payload.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build cart line"))
		return
	}

	store.Add(item)
	responses.WriteSuccessStatus(w, http.StatusCreated, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// UpdateItem changes the quantity of the line at the given position.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	index, err := itemIndex(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var payload updateItemRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if entries := store.Entries(); index >= 0 && index < len(entries) {
		if err := checkStockCeiling(entries[index].Item.StockQuantity, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), c.logg, w, err)
			return
		}
	}

	if err := store.UpdateItem(index, cart.ItemChanges{Quantity: payload.Quantity}); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// RemoveItem deletes the line at the given position.
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	index, err := itemIndex(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := store.Remove(index); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// SetSelection marks the line at the given position as included in or
// excluded from checkout totals.
func (c *CartController) SetSelection(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	index, err := itemIndex(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var payload selectionRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := store.SetSelected(index, *payload.Selected); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// SelectAll flips the selection flag on every line at once.
func (c *CartController) SelectAll(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var payload selectionRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	store.SelectAll(*payload.Selected)
	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

// Clear empties the cart.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	store.Clear()
	responses.WriteSuccess(w, cartView{Items: store.Entries(), Totals: store.Totals()})
}

type checkoutEligibility struct {
	Allowed          bool        `json:"allowed"`
	LoggedIn         bool        `json:"logged_in"`
	ProfileCompleted bool        `json:"profile_completed"`
	Totals           cart.Totals `json:"totals"`
}

// CheckoutEligibility reports whether the cart can proceed to checkout: a
// non-empty cart with a positive selected subtotal and a signed-in shopper
// whose profile is complete.
func (c *CartController) CheckoutEligibility(w http.ResponseWriter, r *http.Request) {
	store, err := c.sessionCart(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	uid, err := requireUserID(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	profileCompleted := false
	dto, err := c.profiles.GetProfile(r.Context(), uid)
	if err != nil {
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			responses.WriteError(r.Context(), c.logg, w, err)
			return
		}
	} else if dto != nil {
		profileCompleted = dto.IsProfileCompleted
	}

	responses.WriteSuccess(w, checkoutEligibility{
		Allowed:          store.CheckoutAllowed(true, profileCompleted),
		LoggedIn:         true,
		ProfileCompleted: profileCompleted,
		Totals:           store.Totals(),
	})
}

func (c *CartController) sessionCart(r *http.Request) (*cart.Store, error) {
	store := c.registry.GetOrCreate(middleware.UserIDFromContext(r.Context()))
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return store, nil
}

// heldQuantity returns the quantity already in the cart for the line matching
// (product id, color, size), or zero.
func heldQuantity(store *cart.Store, productID, color, size string) int {
	for _, entry := range store.Entries() {
		if entry.Item.ProductID == productID && entry.Item.Color == color && entry.Item.Size == size {
			return entry.Item.Quantity
		}
	}
	return 0
}

// checkStockCeiling rejects quantities above the tracked stock. A zero stock
// quantity means the product does not track inventory.
func checkStockCeiling(stock, quantity int) error {
	if stock > 0 && quantity > stock {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity %d exceeds available stock of %d", quantity, stock))
	}
	return nil
}

func itemIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item index")
	}
	return index, nil
}
