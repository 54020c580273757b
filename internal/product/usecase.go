package product

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	// Query executes a validated CatalogQuery and returns one page with the
	// total filtered count.
	Query(ctx context.Context, q dto.CatalogQuery) (*dto.ProductPage, error)
	// GetProduct returns the product and bumps its view counter.
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	// ProductsByCategory returns top in-stock products for a known category,
	// best discount first. An unknown category is NotFound; a known category
	// with no in-stock products yields an empty list.
	ProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)
	PopularProducts(ctx context.Context, limit int) ([]model.Product, error)
	DiscountedProducts(ctx context.Context, minDiscount, limit int) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	UpdateStock(ctx context.Context, input *dto.UpdateStockInput) (*model.Product, error)
	MarkPopular(ctx context.Context, id string, updatedBy *primitive.ObjectID) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error)
	// RecordSale applies an order line against stock and sales counters.
	// Driven by the order-events listener, not the HTTP surface.
	RecordSale(ctx context.Context, id string, quantity int) error
}
