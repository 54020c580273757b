package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/model"
)

const collectionName = "categories"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique name and slug indexes the Conflict
// mapping depends on. Safe to call on every boot.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parentCategory", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "displayOrder", Value: 1}}},
	})
	return errors.Wrap(err, "ensure category indexes")
}

func (r *MongoRepository) Insert(ctx context.Context, c *model.Category) error {
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.New(apperr.KindConflict, "category with this name or slug already exists")
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "insert category")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoRepository) FindByNameOrSlug(ctx context.Context, name, slug string) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"name": name},
		bson.M{"slug": slug},
	}})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Category, error) {
	var c model.Category
	err := r.coll.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "find category")
	}
	return &c, nil
}

func (r *MongoRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Parent != nil {
		if *f.Parent == "" {
			query["parentCategory"] = nil
		} else {
			parentID, err := primitive.ObjectIDFromHex(*f.Parent)
			if err != nil {
				return nil, apperr.New(apperr.KindValidation, "invalid parent id")
			}
			query["parentCategory"] = parentID
		}
	}
	if f.IsFeatured != nil {
		query["isFeatured"] = *f.IsFeatured
	}

	// Whitelisted sort fields; anything else falls back to display order.
	sortField := "displayOrder"
	switch f.SortBy {
	case "name":
		sortField = "name"
	case "createdAt":
		sortField = "createdAt"
	}
	sortDir := 1
	if f.SortOrder == "desc" {
		sortDir = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: sortDir}, {Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "list categories")
	}
	defer cursor.Close(ctx)

	var categories []model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "decode categories")
	}
	return categories, nil
}

func (r *MongoRepository) Update(ctx context.Context, c *model.Category) error {
	update := bson.M{"$set": bson.M{
		"name":           c.Name,
		"slug":           c.Slug,
		"description":    c.Description,
		"icon":           c.Icon,
		"image":          c.Image,
		"parentCategory": c.ParentID,
		"isFeatured":     c.IsFeatured,
		"displayOrder":   c.DisplayOrder,
		"status":         c.Status,
		"metadata":       c.Metadata,
		"updatedAt":      c.UpdatedAt,
	}}
	res, err := r.coll.UpdateByID(ctx, c.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.New(apperr.KindConflict, "category with this name or slug already exists")
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "update category")
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "category not found")
	}
	return nil
}

func (r *MongoRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status model.CategoryStatus) (*model.Category, error) {
	var c model.Category
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}, "$currentDate": bson.M{"updatedAt": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "set category status")
	}
	return &c, nil
}

// Hierarchy expands every active root with all of its active descendants via
// $graphLookup, the store's recursive-descendant primitive.
func (r *MongoRepository) Hierarchy(ctx context.Context) ([]dto.HierarchyRoot, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": model.CategoryStatusActive}}},
		{{Key: "$graphLookup", Value: bson.M{
			"from":                    collectionName,
			"startWith":               "$_id",
			"connectFromField":        "_id",
			"connectToField":          "parentCategory",
			"as":                      "subcategories",
			"depthField":              "depth",
			"restrictSearchWithMatch": bson.M{"status": model.CategoryStatusActive},
		}}},
		{{Key: "$match", Value: bson.M{"parentCategory": nil}}},
		{{Key: "$sort", Value: bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "aggregate hierarchy")
	}
	defer cursor.Close(ctx)

	var roots []dto.HierarchyRoot
	if err := cursor.All(ctx, &roots); err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "decode hierarchy")
	}
	return roots, nil
}

func (r *MongoRepository) FindFeatured(ctx context.Context, limit int) ([]model.Category, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{
		"status":     model.CategoryStatusActive,
		"isFeatured": true,
	}, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "find featured categories")
	}
	defer cursor.Close(ctx)

	var categories []model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, err, "decode featured categories")
	}
	return categories, nil
}

// SeedDefaults upserts on slug with $setOnInsert, so reseeding never
// overwrites admin edits.
func (r *MongoRepository) SeedDefaults(ctx context.Context, defaults []model.Category) error {
	ops := make([]mongo.WriteModel, 0, len(defaults))
	for _, c := range defaults {
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"slug": c.Slug}).
			SetUpdate(bson.M{"$setOnInsert": c}).
			SetUpsert(true))
	}
	if _, err := r.coll.BulkWrite(ctx, ops); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, err, "seed default categories")
	}
	return nil
}
