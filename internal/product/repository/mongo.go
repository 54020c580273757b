package repository

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product/dto"
)

const collectionName = "products"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes backs the hot filter and sort paths. Safe to call on every
// boot.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "inStock", Value: 1}}},
		{Keys: bson.D{{Key: "discountPercentage", Value: -1}}},
		{Keys: bson.D{{Key: "isPopular", Value: 1}, {Key: "inStock", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return errors.Wrap(err, "ensure product indexes")
}

func (r *MongoRepository) Insert(ctx context.Context, p *model.Product) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "insert product")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "find product")
	}
	return &p, nil
}

// buildFilter translates a CatalogQuery into the store predicate. All
// criteria are AND-combined; the text criterion is itself an OR across
// name, description and tags.
func buildFilter(q dto.CatalogQuery) bson.M {
	filter := bson.M{}

	if q.Category != "" {
		filter["category"] = q.Category
	}

	if q.Price.Min != nil || q.Price.Max != nil {
		price := bson.M{}
		if q.Price.Min != nil {
			price["$gte"] = *q.Price.Min
		}
		if q.Price.Max != nil {
			price["$lte"] = *q.Price.Max
		}
		filter["discountedPrice"] = price
	}

	if q.MinDiscount != nil {
		filter["discountPercentage"] = bson.M{"$gte": *q.MinDiscount}
	}

	switch q.Stock {
	case dto.StockInOnly:
		filter["inStock"] = true
	case dto.StockOutOnly:
		filter["inStock"] = false
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	return filter
}

func (r *MongoRepository) Query(ctx context.Context, q dto.CatalogQuery) ([]model.Product, int64, error) {
	filter := buildFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStoreUnavailable, err, "count products")
	}

	dir := 1
	if q.Sort.Desc {
		dir = -1
	}
	// _id tie-break keeps the order total, so pages never overlap.
	sort := bson.D{{Key: q.Sort.Field, Value: dir}, {Key: "_id", Value: 1}}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStoreUnavailable, err, "query products")
	}
	defer cursor.Close(ctx)

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStoreUnavailable, err, "decode products")
	}
	return products, total, nil
}

func (r *MongoRepository) Update(ctx context.Context, p *model.Product) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "update product")
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "delete product")
	}
	return nil
}

func (r *MongoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "increment product views")
	}
	return &p, nil
}

func (r *MongoRepository) FindByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "discountPercentage", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.findMany(ctx, bson.M{"category": category, "inStock": true}, opts, "find products by category")
}

func (r *MongoRepository) FindPopular(ctx context.Context, limit int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "discountPercentage", Value: -1},
			{Key: "salesCount", Value: -1},
			{Key: "ratings.average", Value: -1},
		}).
		SetLimit(int64(limit))
	return r.findMany(ctx, bson.M{"isPopular": true, "inStock": true}, opts, "find popular products")
}

func (r *MongoRepository) FindDiscounted(ctx context.Context, minDiscount, limit int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "discountPercentage", Value: -1}}).
		SetLimit(int64(limit))
	filter := bson.M{
		"discountPercentage": bson.M{"$gte": minDiscount},
		"inStock":            true,
	}
	return r.findMany(ctx, filter, opts, "find discounted products")
}

func (r *MongoRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]model.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, op)
	}
	defer cursor.Close(ctx)

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, op)
	}
	return products, nil
}

func (r *MongoRepository) CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
			"available": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$inStock", true}}, 1, 0}},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "aggregate category counts")
	}
	defer cursor.Close(ctx)

	var counts []dto.CategoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "decode category counts")
	}
	return counts, nil
}

// RecordSale applies the sale in one document update using an aggregation
// pipeline, so stock never goes negative and inStock stays consistent even
// under concurrent sales.
func (r *MongoRepository) RecordSale(ctx context.Context, id primitive.ObjectID, quantity int) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"stockQuantity": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$stockQuantity", quantity}}}},
			"salesCount":    bson.M{"$add": bson.A{"$salesCount", quantity}},
			"updatedAt":     "$$NOW",
		}},
		bson.M{"$set": bson.M{
			"inStock": bson.M{"$gt": bson.A{"$stockQuantity", 0}},
		}},
	}

	res, err := r.coll.UpdateByID(ctx, id, pipeline)
	if err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "record sale")
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	return nil
}
