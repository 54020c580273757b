package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product"
	"github.com/dairydock/catalog-service/internal/product/dto"
	"github.com/dairydock/catalog-service/pkg/cache"
	"github.com/dairydock/catalog-service/pkg/logger"
	"github.com/dairydock/catalog-service/pkg/search"
)

const (
	productsIndex    = "products"
	listCachePrefix  = "products:list:"
	listCachePattern = "products:list:*"
	listCacheTTL     = 5 * time.Minute
)

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	assets asset.Provider
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, assets asset.Provider, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		assets: assets,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Image == nil {
		return nil, apperr.New(apperr.KindValidation, "product image is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "product name is required")
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if !model.IsValidProductCategory(category) {
		return nil, apperr.Newf(apperr.KindValidation, "category must be one of %s", strings.Join(model.ProductCategories, ", "))
	}
	if input.OriginalPrice <= 0 || input.DiscountedPrice <= 0 {
		return nil, apperr.New(apperr.KindValidation, "originalPrice and discountedPrice must be positive")
	}
	if input.DiscountedPrice > input.OriginalPrice {
		return nil, apperr.New(apperr.KindValidation, "discountedPrice cannot be higher than originalPrice")
	}
	if input.StockQuantity < 0 {
		return nil, apperr.New(apperr.KindValidation, "stockQuantity cannot be negative")
	}

	inStock := input.StockQuantity > 0
	if input.InStock != nil {
		inStock = *input.InStock
	}

	image, err := uc.assets.Store(ctx, input.Image.Reader, asset.UploadHints{
		FileName:    input.Image.FileName,
		ContentType: input.Image.ContentType,
		Folder:      "products",
		SizeBytes:   input.Image.SizeBytes,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:          model.BaseModel{CreatedAt: now, UpdatedAt: now},
		Image:              image,
		Name:               name,
		Category:           category,
		OriginalPrice:      input.OriginalPrice,
		DiscountedPrice:    input.DiscountedPrice,
		DiscountPercentage: model.ComputeDiscountPercentage(input.OriginalPrice, input.DiscountedPrice),
		Description:        input.Description,
		Tags:               normalizeTags(input.Tags),
		InStock:            inStock,
		StockQuantity:      input.StockQuantity,
		IsFeatured:         input.IsFeatured,
		CreatedBy:          input.CreatedBy,
	}

	if err := uc.repo.Insert(ctx, p); err != nil {
		// No orphans: the stored binary goes away with the failed insert.
		uc.releaseAsset(ctx, image.StorageID)
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	uc.logger.Info("product created", zap.String("product_id", p.ID.Hex()), zap.String("category", p.Category))
	return p, nil
}

func (uc *productUseCase) Query(ctx context.Context, q dto.CatalogQuery) (*dto.ProductPage, error) {
	// Callers normally go through BuildCatalogQuery; hand-built queries
	// still get sane paging instead of a division by zero below.
	if q.Page < 1 {
		q.Page = dto.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = dto.DefaultLimit
	}

	cacheKey := listCacheKey(q)
	if cacheKey != "" && uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var page dto.ProductPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		}
	}

	var (
		items []model.Product
		total int64
		err   error
	)

	if q.Search != "" && uc.es != nil {
		items, total, err = uc.searchViaElastic(ctx, q)
		if err != nil {
			uc.logger.Error("search via elasticsearch failed, falling back to store", zap.Error(err))
			items, total, err = uc.repo.Query(ctx, q)
		}
	} else {
		items, total, err = uc.repo.Query(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Product{}
	}

	page := &dto.ProductPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	return page, nil
}

func (uc *productUseCase) searchViaElastic(ctx context.Context, q dto.CatalogQuery) ([]model.Product, int64, error) {
	res, err := uc.es.Search(ctx, productsIndex, buildSearchBody(q))
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, int64(res.Hits.Total.Value), nil
}

func buildSearchBody(q dto.CatalogQuery) map[string]interface{} {
	filters := []map[string]interface{}{}
	if q.Category != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}
	if q.Price.Min != nil || q.Price.Max != nil {
		bounds := map[string]interface{}{}
		if q.Price.Min != nil {
			bounds["gte"] = *q.Price.Min
		}
		if q.Price.Max != nil {
			bounds["lte"] = *q.Price.Max
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"discountedPrice": bounds},
		})
	}
	if q.MinDiscount != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"discountPercentage": map[string]interface{}{"gte": *q.MinDiscount}},
		})
	}
	if q.Stock != dto.StockAny {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"inStock": q.Stock == dto.StockInOnly},
		})
	}

	sortField := q.Sort.Field
	if sortField == "name" {
		sortField = "name.keyword"
	}
	order := "asc"
	if q.Sort.Desc {
		order = "desc"
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  q.Search,
							"fields": []string{"name^3", "tags^2", "description"},
						},
					},
				},
				"filter": filters,
			},
		},
		// Same id tiebreak as the store path, so per-page requests agree on
		// tie order and concatenated pages never overlap.
		"sort": []map[string]interface{}{
			{sortField: map[string]interface{}{"order": order}},
			{"id": map[string]interface{}{"order": "asc"}},
		},
		// Keeps total (and TotalPages) exact past the 10k default cap.
		"track_total_hits": true,
		"from":             q.Skip(),
		"size":             q.Limit,
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"name": { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
				"description": { "type": "text" },
				"tags": { "type": "text" },
				"category": { "type": "keyword" },
				"originalPrice": { "type": "double" },
				"discountedPrice": { "type": "double" },
				"discountPercentage": { "type": "integer" },
				"inStock": { "type": "boolean" },
				"salesCount": { "type": "long" },
				"views": { "type": "long" },
				"createdAt": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productsIndex, mapping)

	if err := uc.es.Index(ctx, productsIndex, p.ID.Hex(), p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID.Hex()), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, rawID string) (*model.Product, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid product id")
	}

	// View counting rides on the fetch as an atomic increment; lost updates
	// are not possible on this path.
	p, err := uc.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}
	return p, nil
}

func (uc *productUseCase) ProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !model.IsValidProductCategory(category) {
		return nil, apperr.Newf(apperr.KindNotFound, "unknown category %q", category)
	}
	if limit <= 0 {
		limit = 10
	}

	// A known category with nothing in stock is an empty list, not an error.
	products, err := uc.repo.FindByCategory(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (uc *productUseCase) PopularProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	return uc.repo.FindPopular(ctx, limit)
}

func (uc *productUseCase) DiscountedProducts(ctx context.Context, minDiscount, limit int) ([]model.Product, error) {
	if minDiscount <= 0 {
		minDiscount = 10
	}
	if limit <= 0 {
		limit = 6
	}
	return uc.repo.FindDiscounted(ctx, minDiscount, limit)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid product id")
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindValidation, "product name cannot be empty")
		}
		p.Name = name
	}
	if input.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*input.Category))
		if !model.IsValidProductCategory(category) {
			return nil, apperr.Newf(apperr.KindValidation, "category must be one of %s", strings.Join(model.ProductCategories, ", "))
		}
		p.Category = category
	}
	if input.OriginalPrice != nil {
		if *input.OriginalPrice <= 0 {
			return nil, apperr.New(apperr.KindValidation, "originalPrice must be positive")
		}
		p.OriginalPrice = *input.OriginalPrice
	}
	if input.DiscountedPrice != nil {
		if *input.DiscountedPrice <= 0 {
			return nil, apperr.New(apperr.KindValidation, "discountedPrice must be positive")
		}
		p.DiscountedPrice = *input.DiscountedPrice
	}
	if p.DiscountedPrice > p.OriginalPrice {
		return nil, apperr.New(apperr.KindValidation, "discountedPrice cannot be higher than originalPrice")
	}
	if input.OriginalPrice != nil || input.DiscountedPrice != nil {
		p.DiscountPercentage = model.ComputeDiscountPercentage(p.OriginalPrice, p.DiscountedPrice)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Tags != nil {
		p.Tags = normalizeTags(input.Tags)
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	if input.IsPopular != nil {
		p.IsPopular = *input.IsPopular
	}

	oldImage := p.Image
	if input.Image != nil {
		image, err := uc.assets.Store(ctx, input.Image.Reader, asset.UploadHints{
			FileName:    input.Image.FileName,
			ContentType: input.Image.ContentType,
			Folder:      "products",
			SizeBytes:   input.Image.SizeBytes,
		})
		if err != nil {
			return nil, err
		}
		p.Image = image
	}

	p.UpdatedBy = input.UpdatedBy
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		if input.Image != nil {
			uc.releaseAsset(ctx, p.Image.StorageID)
		}
		return nil, err
	}

	// Old binary released after the swap; failure is logged, never fatal.
	if input.Image != nil && !oldImage.IsZero() {
		uc.releaseAsset(ctx, oldImage.StorageID)
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	uc.logger.Info("product updated", zap.String("product_id", p.ID.Hex()))
	return p, nil
}

func (uc *productUseCase) UpdateStock(ctx context.Context, input *dto.UpdateStockInput) (*model.Product, error) {
	if input.StockQuantity == nil && input.InStock == nil {
		return nil, apperr.New(apperr.KindValidation, "stockQuantity or inStock is required")
	}

	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid product id")
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}

	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, apperr.New(apperr.KindValidation, "stockQuantity cannot be negative")
		}
		p.StockQuantity = *input.StockQuantity
		p.InStock = p.StockQuantity > 0
	}
	// Explicit inStock wins over the quantity-derived value for this call.
	if input.InStock != nil {
		p.InStock = *input.InStock
	}

	p.UpdatedBy = input.UpdatedBy
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) MarkPopular(ctx context.Context, rawID string, updatedBy *primitive.ObjectID) (*model.Product, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid product id")
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}

	p.IsPopular = true
	p.UpdatedBy = updatedBy
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid product id")
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.New(apperr.KindNotFound, "product not found")
	}

	// Release before the document goes; Release is idempotent so a retry
	// after a partial failure is safe.
	if !p.Image.IsZero() {
		uc.releaseAsset(ctx, p.Image.StorageID)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productsIndex, rawID); err != nil {
				uc.logger.Error("failed to delete product from index", zap.String("product_id", rawID), zap.Error(err))
			}
		}()
	}

	uc.logger.Info("product deleted", zap.String("product_id", rawID))
	return nil
}

func (uc *productUseCase) CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error) {
	return uc.repo.CategoryCounts(ctx)
}

func (uc *productUseCase) RecordSale(ctx context.Context, rawID string, quantity int) error {
	if quantity <= 0 {
		return apperr.New(apperr.KindValidation, "sale quantity must be positive")
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid product id")
	}

	if err := uc.repo.RecordSale(ctx, id, quantity); err != nil {
		return err
	}

	go uc.invalidateListCache(context.Background())
	if p, err := uc.repo.FindByID(ctx, id); err == nil && p != nil {
		go uc.syncToElastic(context.Background(), p)
	}
	return nil
}

func listCacheKey(q dto.CatalogQuery) string {
	data, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(data))
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPattern(ctx, listCachePattern); err != nil {
		uc.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
}

func (uc *productUseCase) releaseAsset(ctx context.Context, storageID string) {
	if err := uc.assets.Release(ctx, storageID); err != nil {
		uc.logger.Error("failed to release product image", zap.String("storage_id", storageID), zap.Error(err))
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
