package asset

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/model"
)

// UseCase manages the shared image library: binaries live at the asset
// provider, metadata lives in the store.
type UseCase interface {
	UploadImage(ctx context.Context, upload *Upload, category, description string, uploadedBy *primitive.ObjectID) (*model.ImageAsset, error)
	GetImage(ctx context.Context, id string) (*model.ImageAsset, error)
	ListImages(ctx context.Context, category string, limit int) ([]model.ImageAsset, error)
	DeleteImage(ctx context.Context, id string) error
}
