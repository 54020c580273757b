package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/offer"
)

const offersCollection = "offers"

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) offer.Repository {
	return &mongoRepository{coll: db.Collection(offersCollection)}
}

func (r *mongoRepository) Insert(ctx context.Context, o *model.Offer) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return errors.Wrap(err, "insert offer")
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Offer, error) {
	var o model.Offer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find offer by id")
	}
	return &o, nil
}

func (r *mongoRepository) FindActive(ctx context.Context) ([]model.Offer, error) {
	sort := bson.D{{Key: "priority", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	return r.findMany(ctx, bson.M{"active": true}, sort)
}

func (r *mongoRepository) FindAll(ctx context.Context) ([]model.Offer, error) {
	return r.findMany(ctx, bson.M{}, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
}

func (r *mongoRepository) findMany(ctx context.Context, filter bson.M, sort bson.D) ([]model.Offer, error) {
	opts := options.Find().SetSort(sort)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find offers")
	}
	defer cur.Close(ctx)

	offers := []model.Offer{}
	if err := cur.All(ctx, &offers); err != nil {
		return nil, errors.Wrap(err, "decode offers")
	}
	return offers, nil
}

func (r *mongoRepository) Update(ctx context.Context, o *model.Offer) error {
	o.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return errors.Wrap(err, "update offer")
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "offer not found")
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete offer")
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.KindNotFound, "offer not found")
	}
	return nil
}
