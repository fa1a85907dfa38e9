package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ColorOption is one selectable product color.
type ColorOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Product represents the canonical storefront listing.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Slug            string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description     string           `gorm:"column:description;not null;default:''"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent int              `gorm:"column:discount;not null;default:0"`
	CompareAtPrice  *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	CategoryID      *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	MainImageURL    string           `gorm:"column:main_image_url;not null;default:''"`
	ImageURLs       pq.StringArray   `gorm:"column:image_urls;type:text[]"`
	Sizes           pq.StringArray   `gorm:"column:sizes;type:text[]"`
	Colors          []ColorOption    `gorm:"column:colors;type:jsonb;serializer:json"`
	StockQuantity   int              `gorm:"column:stock_quantity;not null;default:0"`
	TrackQuantity   bool             `gorm:"column:track_quantity;not null;default:true"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured      bool             `gorm:"column:is_featured;not null;default:false"`
	IsTrendy        bool             `gorm:"column:is_trendy;not null;default:false"`
	MetaTitle       *string          `gorm:"column:meta_title"`
	MetaDescription *string          `gorm:"column:meta_description"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
