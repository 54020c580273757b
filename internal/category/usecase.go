package category

import (
	"context"

	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	// GetCategory resolves identifier as a document id when it has id syntax,
	// otherwise as a case-insensitive slug.
	GetCategory(ctx context.Context, identifier string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	// ArchiveCategory soft-deletes: status becomes archived, the document
	// stays. Children are not cascaded; they keep their own lifecycle.
	ArchiveCategory(ctx context.Context, id string) (*model.Category, error)
	// Hierarchy materializes the active category forest, siblings ordered by
	// displayOrder then creation time.
	Hierarchy(ctx context.Context) ([]*model.Category, error)
	FeaturedCategories(ctx context.Context, limit int) ([]model.Category, error)
	// SeedDefaults idempotently creates the stock dairy categories.
	SeedDefaults(ctx context.Context) ([]model.Category, error)
}
