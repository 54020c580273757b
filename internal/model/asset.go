package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetReference describes a stored binary. It is owned by exactly one
// Category or Product; replacing it must release the previous binary at the
// asset provider.
type AssetReference struct {
	StorageID string `bson:"storageId" json:"storageId"`
	URL       string `bson:"url" json:"url"`
	Format    string `bson:"format,omitempty" json:"format,omitempty"`
	Width     int    `bson:"width,omitempty" json:"width,omitempty"`
	Height    int    `bson:"height,omitempty" json:"height,omitempty"`
	SizeBytes int64  `bson:"sizeBytes,omitempty" json:"sizeBytes,omitempty"`
}

func (a AssetReference) IsZero() bool {
	return a.StorageID == "" && a.URL == ""
}

// ImageAsset is a standalone entry in the shared image library. Unlike the
// image embedded in a Category or Product, library entries are managed
// directly through the image endpoints.
type ImageAsset struct {
	BaseModel    `bson:",inline"`
	FileName     string              `bson:"filename" json:"filename"`
	OriginalName string              `bson:"originalName" json:"originalName"`
	MimeType     string              `bson:"mimeType" json:"mimeType"`
	Reference    AssetReference      `bson:"reference" json:"reference"`
	Category     string              `bson:"category" json:"category"` // product, banner, profile, other
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	UploadedBy   *primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
}
