package dto

import (
	"github.com/dairydock/catalog-service/internal/model"
)

// ProductPage is one page of query results plus the total across all pages
// for the same predicate.
type ProductPage struct {
	Items      []model.Product `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

// CategoryCount aggregates products per category value.
type CategoryCount struct {
	Category       string `bson:"_id" json:"category"`
	Count          int64  `bson:"count" json:"count"`
	AvailableCount int64  `bson:"available" json:"availableCount"`
}
