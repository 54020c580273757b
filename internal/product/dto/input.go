package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/asset"
)

type CreateProductInput struct {
	Name            string
	Category        string
	OriginalPrice   float64
	DiscountedPrice float64
	Description     string
	Tags            []string
	InStock         *bool // derived from StockQuantity when nil
	StockQuantity   int
	IsFeatured      bool
	Image           *asset.Upload // mandatory
	CreatedBy       *primitive.ObjectID
}

// UpdateProductInput merges partially: nil fields are left untouched.
// Touching either price recomputes discountPercentage.
type UpdateProductInput struct {
	ID              string
	Name            *string
	Category        *string
	OriginalPrice   *float64
	DiscountedPrice *float64
	Description     *string
	Tags            []string
	IsFeatured      *bool
	IsPopular       *bool
	Image           *asset.Upload
	UpdatedBy       *primitive.ObjectID
}

type UpdateStockInput struct {
	ID            string
	StockQuantity *int
	// InStock overrides the quantity-derived value for this call only.
	InStock   *bool
	UpdatedBy *primitive.ObjectID
}
