package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-backend/internal/catalog"
)

// LineItem is one purchasable configuration in the cart. The identity key is
// (product id, color, size): the same product in another color or size is a
// separate line.
type LineItem struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Quantity        int             `json:"quantity"`
	DiscountPercent int             `json:"discount"`
	CalculatedPrice decimal.Decimal `json:"calculated_price"`
	StockQuantity   int             `json:"stock_quantity"`
}

type identityKey struct {
	productID string
	color     string
	size      string
}

func (li LineItem) key() identityKey {
	return identityKey{productID: li.ProductID, color: li.Color, size: li.Size}
}

// NewLineItem builds a line item from a catalog product and the shopper's
// chosen configuration, deriving the discounted unit price.
func NewLineItem(product *catalog.ProductDTO, color, size string, quantity int) (LineItem, error) {
	if product == nil {
		return LineItem{}, fmt.Errorf("product is required")
	}
	if strings.TrimSpace(color) == "" || strings.TrimSpace(size) == "" {
		return LineItem{}, fmt.Errorf("color and size are required")
	}
	if quantity < 1 {
		return LineItem{}, fmt.Errorf("quantity must be at least 1")
	}

	return LineItem{
		ProductID:       product.ID.String(),
		Name:            product.Name,
		Price:           product.Price,
		ImageURL:        product.MainImageURL,
		Size:            size,
		Color:           color,
		Quantity:        quantity,
		DiscountPercent: product.DiscountPercent,
		CalculatedPrice: catalog.DiscountedPrice(product.Price, product.DiscountPercent),
		StockQuantity:   product.StockQuantity,
	}, nil
}

// Entry pairs a line item with its selection flag. Keeping both in one record
// means structural mutations can never desynchronize items from selections.
type Entry struct {
	Item     LineItem `json:"item"`
	Selected bool     `json:"selected"`
}
