package dto

import (
	"github.com/dairydock/catalog-service/internal/asset"
)

type CreateCategoryInput struct {
	Name         string
	Description  string
	Icon         string
	ParentID     string // hex id, empty for top-level
	IsFeatured   bool
	DisplayOrder int
	Metadata     map[string]interface{}
	Image        *asset.Upload
}

// UpdateCategoryInput merges partially: nil pointer fields are left as-is.
type UpdateCategoryInput struct {
	ID          string
	Name        *string
	Description *string
	Icon        *string
	// ParentID is tri-state: nil leaves the parent alone, empty string
	// detaches to top-level, a hex id reattaches.
	ParentID     *string
	IsFeatured   *bool
	DisplayOrder *int
	Status       *string
	Metadata     map[string]interface{}
	Image        *asset.Upload
}
