package product

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product/dto"
)

// Repository is the document-store capability behind the product catalog.
// Lookups return (nil, nil) when no document matches.
type Repository interface {
	Insert(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	// Query applies the filter conjunctively and returns one page plus the
	// total match count for the same predicate.
	Query(ctx context.Context, q dto.CatalogQuery) ([]model.Product, int64, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementViews bumps the view counter atomically and returns the
	// updated document.
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	FindByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)
	FindPopular(ctx context.Context, limit int) ([]model.Product, error)
	FindDiscounted(ctx context.Context, minDiscount, limit int) ([]model.Product, error)
	CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error)
	// RecordSale decrements stock (floored at zero, inStock re-derived) and
	// increments salesCount in a single document update.
	RecordSale(ctx context.Context, id primitive.ObjectID, quantity int) error
}
