package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
	// CategoryStatusArchived is terminal: archived categories are never
	// physically removed and never transition back.
	CategoryStatusArchived CategoryStatus = "archived"
)

func (s CategoryStatus) Valid() bool {
	switch s {
	case CategoryStatusActive, CategoryStatusInactive, CategoryStatusArchived:
		return true
	}
	return false
}

// Category is a node in the self-referencing category forest. ParentID nil
// means top-level.
type Category struct {
	BaseModel    `bson:",inline"`
	Name         string                 `bson:"name" json:"name"`
	Slug         string                 `bson:"slug" json:"slug"`
	Description  string                 `bson:"description" json:"description"`
	Icon         string                 `bson:"icon" json:"icon"`
	Image        AssetReference         `bson:"image,omitempty" json:"image"`
	ParentID     *primitive.ObjectID    `bson:"parentCategory" json:"parentCategory"`
	IsFeatured   bool                   `bson:"isFeatured" json:"isFeatured"`
	DisplayOrder int                    `bson:"displayOrder" json:"displayOrder"`
	Status       CategoryStatus         `bson:"status" json:"status"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`

	// Populated by hierarchy materialization only, never persisted.
	Depth    int         `bson:"depth,omitempty" json:"depth,omitempty"`
	Children []*Category `bson:"-" json:"subcategories,omitempty"`
}
