package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
)

const imagesCollection = "images"

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) asset.Repository {
	return &mongoRepository{coll: db.Collection(imagesCollection)}
}

func (r *mongoRepository) Insert(ctx context.Context, image *model.ImageAsset) error {
	if image.ID.IsZero() {
		image.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if image.CreatedAt.IsZero() {
		image.CreatedAt = now
	}
	image.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, image); err != nil {
		return errors.Wrap(err, "insert image")
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.ImageAsset, error) {
	var image model.ImageAsset
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&image)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find image by id")
	}
	return &image, nil
}

func (r *mongoRepository) FindAll(ctx context.Context, category string, limit int) ([]model.ImageAsset, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find images")
	}
	defer cur.Close(ctx)

	images := []model.ImageAsset{}
	if err := cur.All(ctx, &images); err != nil {
		return nil, errors.Wrap(err, "decode images")
	}
	return images, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "delete image")
	}
	return nil
}
