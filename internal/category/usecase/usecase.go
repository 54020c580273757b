package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/category"
	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/pkg/logger"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type categoryUseCase struct {
	repo   category.Repository
	assets asset.Provider
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, assets asset.Provider, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		assets: assets,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "category name is required")
	}
	slug := category.Slugify(name)

	existing, err := uc.repo.FindByNameOrSlug(ctx, name, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "category with this name or slug already exists")
	}

	var parentID *primitive.ObjectID
	if input.ParentID != "" {
		id, err := primitive.ObjectIDFromHex(input.ParentID)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid parent category id")
		}
		parent, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.New(apperr.KindValidation, "parent category does not exist")
		}
		parentID = &id
	}

	// Store the image before inserting; if the insert fails the binary is
	// released again so neither side leaks.
	var image model.AssetReference
	if input.Image != nil {
		image, err = uc.assets.Store(ctx, input.Image.Reader, asset.UploadHints{
			FileName:    input.Image.FileName,
			ContentType: input.Image.ContentType,
			Folder:      "categories",
			SizeBytes:   input.Image.SizeBytes,
		})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	c := &model.Category{
		BaseModel:    model.BaseModel{CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Slug:         slug,
		Description:  input.Description,
		Icon:         input.Icon,
		Image:        image,
		ParentID:     parentID,
		IsFeatured:   input.IsFeatured,
		DisplayOrder: input.DisplayOrder,
		Status:       model.CategoryStatusActive,
		Metadata:     input.Metadata,
	}

	if err := uc.repo.Insert(ctx, c); err != nil {
		if !image.IsZero() {
			uc.releaseAsset(ctx, image.StorageID)
		}
		return nil, err
	}

	uc.logger.Info("category created", zap.String("category_id", c.ID.Hex()), zap.String("slug", c.Slug))
	return c, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, identifier string) (*model.Category, error) {
	var (
		c   *model.Category
		err error
	)
	if objectIDPattern.MatchString(identifier) {
		id, _ := primitive.ObjectIDFromHex(identifier)
		c, err = uc.repo.FindByID(ctx, id)
	} else {
		c, err = uc.repo.FindBySlug(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}
	return c, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	if filters.Status == "" {
		filters.Status = model.CategoryStatusActive
	}
	if !filters.Status.Valid() {
		return nil, apperr.New(apperr.KindValidation, "invalid status filter")
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid category id")
	}

	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindValidation, "category name cannot be empty")
		}
		slug := category.Slugify(name)
		if name != c.Name || slug != c.Slug {
			existing, err := uc.repo.FindByNameOrSlug(ctx, name, slug)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != c.ID {
				return nil, apperr.New(apperr.KindConflict, "category with this name or slug already exists")
			}
		}
		c.Name = name
		c.Slug = slug
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Icon != nil {
		c.Icon = *input.Icon
	}
	if input.ParentID != nil {
		if *input.ParentID == "" {
			c.ParentID = nil
		} else {
			parentID, err := primitive.ObjectIDFromHex(*input.ParentID)
			if err != nil {
				return nil, apperr.New(apperr.KindValidation, "invalid parent category id")
			}
			if err := uc.checkCycle(ctx, c.ID, parentID); err != nil {
				return nil, err
			}
			c.ParentID = &parentID
		}
	}
	if input.IsFeatured != nil {
		c.IsFeatured = *input.IsFeatured
	}
	if input.DisplayOrder != nil {
		c.DisplayOrder = *input.DisplayOrder
	}
	if input.Status != nil {
		status := model.CategoryStatus(*input.Status)
		if !status.Valid() {
			return nil, apperr.New(apperr.KindValidation, "invalid category status")
		}
		if c.Status == model.CategoryStatusArchived && status != model.CategoryStatusArchived {
			return nil, apperr.New(apperr.KindValidation, "archived categories cannot be reactivated")
		}
		c.Status = status
	}
	if input.Metadata != nil {
		c.Metadata = input.Metadata
	}

	oldImage := c.Image
	if input.Image != nil {
		image, err := uc.assets.Store(ctx, input.Image.Reader, asset.UploadHints{
			FileName:    input.Image.FileName,
			ContentType: input.Image.ContentType,
			Folder:      "categories",
			SizeBytes:   input.Image.SizeBytes,
		})
		if err != nil {
			return nil, err
		}
		c.Image = image
	}

	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		if input.Image != nil && !c.Image.IsZero() {
			uc.releaseAsset(ctx, c.Image.StorageID)
		}
		return nil, err
	}

	// The old binary is released after the swap; a failed release leaves a
	// stale object behind, which is preferable to losing the new reference.
	if input.Image != nil && !oldImage.IsZero() {
		uc.releaseAsset(ctx, oldImage.StorageID)
	}

	uc.logger.Info("category updated", zap.String("category_id", c.ID.Hex()))
	return c, nil
}

// checkCycle walks the prospective ancestor chain and rejects a parent that
// is the category itself or one of its descendants. Bounded by the visited
// set, so a pre-existing corrupt chain cannot loop forever.
func (uc *categoryUseCase) checkCycle(ctx context.Context, id, parentID primitive.ObjectID) error {
	if id == parentID {
		return apperr.New(apperr.KindValidation, "category cannot be its own parent")
	}

	visited := map[primitive.ObjectID]struct{}{id: {}}
	current := parentID
	for {
		if _, seen := visited[current]; seen {
			return apperr.New(apperr.KindValidation, "parent assignment would create a cycle")
		}
		visited[current] = struct{}{}

		node, err := uc.repo.FindByID(ctx, current)
		if err != nil {
			return err
		}
		if node == nil {
			return apperr.New(apperr.KindValidation, "parent category does not exist")
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
}

func (uc *categoryUseCase) ArchiveCategory(ctx context.Context, rawID string) (*model.Category, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid category id")
	}

	c, err := uc.repo.SetStatus(ctx, id, model.CategoryStatusArchived)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}

	uc.logger.Info("category archived", zap.String("category_id", c.ID.Hex()))
	return c, nil
}

func (uc *categoryUseCase) Hierarchy(ctx context.Context) ([]*model.Category, error) {
	roots, err := uc.repo.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}

	forest := make([]*model.Category, 0, len(roots))
	for i := range roots {
		forest = append(forest, assembleTree(&roots[i]))
	}
	sortSiblings(forest)
	return forest, nil
}

// assembleTree nests the flat descendant set under its root, assigning depth
// and ordering every sibling group by displayOrder then creation time.
func assembleTree(root *dto.HierarchyRoot) *model.Category {
	node := root.Category
	node.Depth = 0
	node.Children = nil

	byParent := make(map[primitive.ObjectID][]*model.Category)
	for i := range root.Subcategories {
		sub := root.Subcategories[i]
		sub.Children = nil
		if sub.ParentID == nil {
			continue
		}
		byParent[*sub.ParentID] = append(byParent[*sub.ParentID], &sub)
	}

	attachChildren(&node, byParent, 1)
	return &node
}

func attachChildren(node *model.Category, byParent map[primitive.ObjectID][]*model.Category, depth int) {
	children := byParent[node.ID]
	sortSiblings(children)
	for _, child := range children {
		child.Depth = depth
		attachChildren(child, byParent, depth+1)
	}
	node.Children = children
}

func sortSiblings(nodes []*model.Category) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].DisplayOrder != nodes[j].DisplayOrder {
			return nodes[i].DisplayOrder < nodes[j].DisplayOrder
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
}

func (uc *categoryUseCase) FeaturedCategories(ctx context.Context, limit int) ([]model.Category, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.repo.FindFeatured(ctx, limit)
}

func (uc *categoryUseCase) SeedDefaults(ctx context.Context) ([]model.Category, error) {
	now := time.Now()
	defaults := make([]model.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		d.Status = model.CategoryStatusActive
		d.CreatedAt = now
		d.UpdatedAt = now
		defaults = append(defaults, d)
	}

	if err := uc.repo.SeedDefaults(ctx, defaults); err != nil {
		return nil, err
	}

	uc.logger.Info("default categories seeded", zap.Int("count", len(defaults)))
	return uc.repo.FindAll(ctx, &dto.CategoryFilters{Status: model.CategoryStatusActive})
}

var defaultCategories = []model.Category{
	{Name: "Milk", Slug: "milk", Description: "Fresh milk and milk products", Icon: "🥛", DisplayOrder: 1, Metadata: map[string]interface{}{"color": "#2196F3"}},
	{Name: "Ghee", Slug: "ghee", Description: "Pure clarified butter", Icon: "🫕", DisplayOrder: 2, Metadata: map[string]interface{}{"color": "#FF9800"}},
	{Name: "Curd", Slug: "curd", Description: "Fresh yogurt and curd products", Icon: "🍶", DisplayOrder: 3, Metadata: map[string]interface{}{"color": "#4CAF50"}},
	{Name: "Paneer", Slug: "paneer", Description: "Fresh cottage cheese", Icon: "🧀", DisplayOrder: 4, Metadata: map[string]interface{}{"color": "#795548"}},
	{Name: "Butter", Slug: "butter", Description: "Fresh butter and spreads", Icon: "🧈", DisplayOrder: 5, Metadata: map[string]interface{}{"color": "#FFEB3B"}},
	{Name: "Cheese", Slug: "cheese", Description: "Various cheese products", Icon: "🧀", DisplayOrder: 6, Metadata: map[string]interface{}{"color": "#FF5722"}},
	{Name: "Cream", Slug: "cream", Description: "Fresh cream and malai", Icon: "🍦", DisplayOrder: 7, Metadata: map[string]interface{}{"color": "#FFFFFF"}},
	{Name: "Buttermilk", Slug: "buttermilk", Description: "Fresh chaas and buttermilk", Icon: "🥤", DisplayOrder: 8, Metadata: map[string]interface{}{"color": "#9C27B0"}},
}

func (uc *categoryUseCase) releaseAsset(ctx context.Context, storageID string) {
	if err := uc.assets.Release(ctx, storageID); err != nil {
		uc.logger.Error("failed to release category image", zap.String("storage_id", storageID), zap.Error(err))
	}
}
