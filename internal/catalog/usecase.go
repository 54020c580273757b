package catalog

import (
	"context"

	"github.com/dairydock/catalog-service/internal/category"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product"
	proddto "github.com/dairydock/catalog-service/internal/product/dto"
)

// Overview is the storefront landing payload: the active category tree
// alongside product availability per product category.
type Overview struct {
	Categories     []*model.Category       `json:"categories"`
	CategoryCounts []proddto.CategoryCount `json:"categoryCounts"`
}

// UseCase composes the category and product domains. It holds no state of
// its own.
type UseCase interface {
	Overview(ctx context.Context) (*Overview, error)
}

type catalogUseCase struct {
	categories category.UseCase
	products   product.UseCase
}

func NewCatalogUseCase(categories category.UseCase, products product.UseCase) UseCase {
	return &catalogUseCase{categories: categories, products: products}
}

func (uc *catalogUseCase) Overview(ctx context.Context) (*Overview, error) {
	tree, err := uc.categories.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := uc.products.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []proddto.CategoryCount{}
	}

	return &Overview{
		Categories:     tree,
		CategoryCounts: counts,
	}, nil
}
