package dto

import (
	"github.com/dairydock/catalog-service/internal/model"
)

// CategoryFilters narrows ListCategories.
type CategoryFilters struct {
	Status model.CategoryStatus
	// Parent is tri-state: nil ignores the parent, empty string selects
	// top-level categories only, a hex id selects direct children.
	Parent     *string
	IsFeatured *bool
	SortBy     string // displayOrder, name, createdAt
	SortOrder  string // asc, desc
}

// HierarchyRoot is a top-level category with its active descendants expanded
// flat by the store; the usecase nests and orders them.
type HierarchyRoot struct {
	model.Category `bson:",inline"`
	Subcategories  []model.Category `bson:"subcategories"`
}
