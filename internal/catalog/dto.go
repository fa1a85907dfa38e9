package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-backend/pkg/db/models"
)

// ColorDTO is one selectable color exposed to clients.
type ColorDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ProductDTO is the storefront product payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent int             `json:"discount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	HasDiscount     bool            `json:"has_discount"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	MainImageURL    string          `json:"main_image_url"`
	ImageURLs       []string        `json:"image_urls"`
	Sizes           []string        `json:"sizes"`
	Colors          []ColorDTO      `json:"colors"`
	StockQuantity   int             `json:"stock_quantity"`
	InStock         bool            `json:"in_stock"`
	IsFeatured      bool            `json:"is_featured"`
	IsTrendy        bool            `json:"is_trendy"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toProductDTO(p *models.Product) *ProductDTO {
	colors := make([]ColorDTO, 0, len(p.Colors))
	for _, c := range p.Colors {
		colors = append(colors, ColorDTO{Code: c.Code, Name: c.Name})
	}

	dto := &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		DiscountedPrice: DiscountedPrice(p.Price, p.DiscountPercent),
		HasDiscount:     p.DiscountPercent > 0,
		CategoryID:      p.CategoryID,
		MainImageURL:    p.MainImageURL,
		ImageURLs:       append([]string{}, p.ImageURLs...),
		Sizes:           append([]string{}, p.Sizes...),
		Colors:          colors,
		StockQuantity:   p.StockQuantity,
		InStock:         !p.TrackQuantity || p.StockQuantity > 0,
		IsFeatured:      p.IsFeatured,
		IsTrendy:        p.IsTrendy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	return dto
}
