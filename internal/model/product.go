package model

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCategories is the closed set of product category values, always
// stored lowercase.
var ProductCategories = []string{"milk", "ghee", "curd", "paneer", "cheese", "butter", "other"}

func IsValidProductCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	BaseModel       `bson:",inline"`
	Image           AssetReference `bson:"image" json:"image"`
	Name            string         `bson:"name" json:"name"`
	Category        string         `bson:"category" json:"category"`
	OriginalPrice   float64        `bson:"originalPrice" json:"originalPrice"`
	DiscountedPrice float64        `bson:"discountedPrice" json:"discountedPrice"`
	// DiscountPercentage is derived from the two prices on every write that
	// touches either; it is never independently settable.
	DiscountPercentage int                 `bson:"discountPercentage" json:"discountPercentage"`
	Description        string              `bson:"description" json:"description"`
	Tags               []string            `bson:"tags" json:"tags"`
	InStock            bool                `bson:"inStock" json:"inStock"`
	StockQuantity      int                 `bson:"stockQuantity" json:"stockQuantity"`
	Ratings            Ratings             `bson:"ratings" json:"ratings"`
	Views              int64               `bson:"views" json:"views"`
	SalesCount         int64               `bson:"salesCount" json:"salesCount"`
	IsFeatured         bool                `bson:"isFeatured" json:"isFeatured"`
	IsPopular          bool                `bson:"isPopular" json:"isPopular"`
	CreatedBy          *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy          *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// ComputeDiscountPercentage returns round(100 * (original - discounted) / original).
func ComputeDiscountPercentage(originalPrice, discountedPrice float64) int {
	if originalPrice <= 0 {
		return 0
	}
	return int(math.Round(100 * (originalPrice - discountedPrice) / originalPrice))
}
