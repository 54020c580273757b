package category

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/model"
)

// Repository is the document-store capability behind the category tree.
// Lookups return (nil, nil) when no document matches; errors are reserved
// for store failures.
type Repository interface {
	Insert(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindByNameOrSlug(ctx context.Context, name, slug string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status model.CategoryStatus) (*model.Category, error)
	// Hierarchy returns every active top-level category with its full set of
	// active descendants expanded (flat, with store-computed depth).
	Hierarchy(ctx context.Context) ([]dto.HierarchyRoot, error)
	FindFeatured(ctx context.Context, limit int) ([]model.Category, error)
	SeedDefaults(ctx context.Context, defaults []model.Category) error
}
