package offer

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/model"
)

// Repository persists promotional offers. Lookups return (nil, nil) when no
// document matches.
type Repository interface {
	Insert(ctx context.Context, offer *model.Offer) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Offer, error)
	FindActive(ctx context.Context) ([]model.Offer, error)
	FindAll(ctx context.Context) ([]model.Offer, error)
	Update(ctx context.Context, offer *model.Offer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
