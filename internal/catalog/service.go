package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-shop/storefront-backend/pkg/config"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

// Service exposes read operations for the storefront catalog.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
}

// ListProductsInput captures the query knobs for the browse endpoint.
type ListProductsInput struct {
	CategoryID   *uuid.UUID
	FeaturedOnly bool
	TrendyOnly   bool
	Query        string
	Limit        int
}

type service struct {
	repo *Repository
	cfg  config.CatalogConfig
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if cfg.DefaultPageSize <= 0 || cfg.MaxPageSize < cfg.DefaultPageSize {
		return nil, fmt.Errorf("invalid catalog page size configuration")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	limit := input.Limit
	switch {
	case limit <= 0:
		limit = s.cfg.DefaultPageSize
	case limit > s.cfg.MaxPageSize:
		limit = s.cfg.MaxPageSize
	}

	products, err := s.repo.ListProducts(ctx, ListFilter{
		CategoryID:   input.CategoryID,
		FeaturedOnly: input.FeaturedOnly,
		TrendyOnly:   input.TrendyOnly,
		Query:        strings.TrimSpace(input.Query),
		Limit:        limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *toProductDTO(&products[i]))
	}
	return dtos, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return toProductDTO(product), nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return toProductDTO(product), nil
}
