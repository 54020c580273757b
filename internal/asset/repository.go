package asset

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/model"
)

// Repository persists image-library entries. Lookups return (nil, nil) when
// no document matches.
type Repository interface {
	Insert(ctx context.Context, image *model.ImageAsset) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.ImageAsset, error)
	FindAll(ctx context.Context, category string, limit int) ([]model.ImageAsset, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
