package usecase_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/category"
	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/category/usecase"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type fakeCategoryRepo struct {
	categories map[primitive.ObjectID]*model.Category
	hierarchy  []dto.HierarchyRoot
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[primitive.ObjectID]*model.Category{}}
}

func (r *fakeCategoryRepo) Insert(_ context.Context, c *model.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	clone := *c
	r.categories[c.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Category, error) {
	if c, ok := r.categories[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) FindByNameOrSlug(_ context.Context, name, slug string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name || c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) FindAll(_ context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	out := []model.Category{}
	for _, c := range r.categories {
		if filters != nil && filters.Status != "" && c.Status != filters.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *model.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return apperr.New(apperr.KindNotFound, "category not found")
	}
	clone := *c
	r.categories[c.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) SetStatus(_ context.Context, id primitive.ObjectID, status model.CategoryStatus) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	c.Status = status
	clone := *c
	return &clone, nil
}

func (r *fakeCategoryRepo) Hierarchy(_ context.Context) ([]dto.HierarchyRoot, error) {
	return r.hierarchy, nil
}

func (r *fakeCategoryRepo) FindFeatured(_ context.Context, limit int) ([]model.Category, error) {
	out := []model.Category{}
	for _, c := range r.categories {
		if c.IsFeatured && c.Status == model.CategoryStatusActive {
			out = append(out, *c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) SeedDefaults(_ context.Context, defaults []model.Category) error {
	for i := range defaults {
		d := defaults[i]
		if existing, _ := r.FindBySlug(context.Background(), d.Slug); existing != nil {
			continue
		}
		d.ID = primitive.NewObjectID()
		r.categories[d.ID] = &d
	}
	return nil
}

type fakeProvider struct {
	stored   int
	released []string
	failNext bool
}

func (p *fakeProvider) Store(_ context.Context, _ io.Reader, hints asset.UploadHints) (model.AssetReference, error) {
	if p.failNext {
		return model.AssetReference{}, apperr.New(apperr.KindAssetProvider, "store failed")
	}
	p.stored++
	id := fmt.Sprintf("%s/object-%d", hints.Folder, p.stored)
	return model.AssetReference{StorageID: id, URL: "http://assets.local/" + id}, nil
}

func (p *fakeProvider) Release(_ context.Context, storageID string) error {
	p.released = append(p.released, storageID)
	return nil
}

func (p *fakeProvider) TransformedURL(storageID string, _ asset.TransformOptions) string {
	return "http://assets.local/" + storageID
}

func (p *fakeProvider) Name() string { return "fake" }

func newUseCase(repo category.Repository) category.UseCase {
	return usecase.NewCategoryUseCase(repo, &fakeProvider{}, logger.NewNop())
}

func TestCreateCategory(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	created, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		Name: "  Flavoured Milk ",
	})

	c.Assert(err, qt.IsNil)
	c.Assert(created.Name, qt.Equals, "Flavoured Milk")
	c.Assert(created.Slug, qt.Equals, "flavoured-milk")
	c.Assert(created.Status, qt.Equals, model.CategoryStatusActive)
	c.Assert(created.ParentID, qt.IsNil)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Milk"})
	c.Assert(err, qt.IsNil)

	// Same slug even though the name differs in case.
	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "milk"})
	c.Assert(apperr.IsConflict(err), qt.IsTrue)
}

func TestCreateCategoryMissingName(t *testing.T) {
	c := qt.New(t)
	uc := newUseCase(newFakeCategoryRepo())

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "   "})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	c := qt.New(t)
	uc := newUseCase(newFakeCategoryRepo())

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		Name:     "Cheese",
		ParentID: primitive.NewObjectID().Hex(),
	})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestGetCategoryBySlugAndID(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	created, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Paneer"})
	c.Assert(err, qt.IsNil)

	byID, err := uc.GetCategory(context.Background(), created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(byID.ID, qt.Equals, created.ID)

	bySlug, err := uc.GetCategory(context.Background(), "PANEER")
	c.Assert(err, qt.IsNil)
	c.Assert(bySlug.ID, qt.Equals, created.ID)

	_, err = uc.GetCategory(context.Background(), "nonexistent")
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)
}

func TestUpdateCategoryReparentCycle(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	root, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Dairy"})
	c.Assert(err, qt.IsNil)
	child, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Milk", ParentID: root.ID.Hex()})
	c.Assert(err, qt.IsNil)
	grandchild, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Toned Milk", ParentID: child.ID.Hex()})
	c.Assert(err, qt.IsNil)

	// Attaching the root under its own grandchild closes a loop.
	gcID := grandchild.ID.Hex()
	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: root.ID.Hex(), ParentID: &gcID})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)

	// Self-parenting is the degenerate loop.
	selfID := root.ID.Hex()
	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: root.ID.Hex(), ParentID: &selfID})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestUpdateCategoryDetachToTopLevel(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	root, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Dairy"})
	c.Assert(err, qt.IsNil)
	child, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Milk", ParentID: root.ID.Hex()})
	c.Assert(err, qt.IsNil)

	empty := ""
	updated, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: child.ID.Hex(), ParentID: &empty})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.ParentID, qt.IsNil)
}

func TestUpdateCategoryRenameConflict(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Milk"})
	c.Assert(err, qt.IsNil)
	other, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Ghee"})
	c.Assert(err, qt.IsNil)

	rename := "Milk"
	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: other.ID.Hex(), Name: &rename})
	c.Assert(apperr.IsConflict(err), qt.IsTrue)
}

func TestArchivedCategoryCannotReactivate(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	created, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Curd"})
	c.Assert(err, qt.IsNil)

	archived, err := uc.ArchiveCategory(context.Background(), created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(archived.Status, qt.Equals, model.CategoryStatusArchived)

	active := string(model.CategoryStatusActive)
	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: created.ID.Hex(), Status: &active})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestHierarchyOrderingAndDepth(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rootID := primitive.NewObjectID()
	firstID := primitive.NewObjectID()
	secondID := primitive.NewObjectID()
	leafID := primitive.NewObjectID()

	mk := func(id primitive.ObjectID, name string, parent *primitive.ObjectID, order int, createdAt time.Time) model.Category {
		return model.Category{
			BaseModel:    model.BaseModel{ID: id, CreatedAt: createdAt},
			Name:         name,
			ParentID:     parent,
			DisplayOrder: order,
			Status:       model.CategoryStatusActive,
		}
	}

	repo.hierarchy = []dto.HierarchyRoot{
		{
			Category: mk(rootID, "Dairy", nil, 1, base),
			Subcategories: []model.Category{
				// Same displayOrder resolved by creation time.
				mk(secondID, "Second", &rootID, 2, base.Add(2*time.Hour)),
				mk(firstID, "First", &rootID, 2, base.Add(time.Hour)),
				mk(leafID, "Leaf", &firstID, 1, base.Add(3*time.Hour)),
			},
		},
	}

	forest, err := uc.Hierarchy(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(forest, qt.HasLen, 1)

	root := forest[0]
	c.Assert(root.Depth, qt.Equals, 0)
	c.Assert(root.Children, qt.HasLen, 2)
	c.Assert(root.Children[0].Name, qt.Equals, "First")
	c.Assert(root.Children[1].Name, qt.Equals, "Second")
	c.Assert(root.Children[0].Depth, qt.Equals, 1)

	c.Assert(root.Children[0].Children, qt.HasLen, 1)
	c.Assert(root.Children[0].Children[0].Name, qt.Equals, "Leaf")
	c.Assert(root.Children[0].Children[0].Depth, qt.Equals, 2)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	c := qt.New(t)
	repo := newFakeCategoryRepo()
	uc := newUseCase(repo)

	first, err := uc.SeedDefaults(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(len(first) >= 8, qt.IsTrue)

	second, err := uc.SeedDefaults(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(second, qt.HasLen, len(first))
}

func TestCreateCategoryReleasesImageOnInsertFailure(t *testing.T) {
	c := qt.New(t)
	repo := &failingInsertRepo{fakeCategoryRepo: newFakeCategoryRepo()}
	provider := &fakeProvider{}
	uc := usecase.NewCategoryUseCase(repo, provider, logger.NewNop())

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		Name:  "Cream",
		Image: &asset.Upload{Reader: strings.NewReader("img"), FileName: "cream.png", ContentType: "image/png"},
	})

	c.Assert(err, qt.IsNotNil)
	c.Assert(provider.stored, qt.Equals, 1)
	c.Assert(provider.released, qt.HasLen, 1)
}

type failingInsertRepo struct {
	*fakeCategoryRepo
}

func (r *failingInsertRepo) Insert(context.Context, *model.Category) error {
	return apperr.New(apperr.KindStoreUnavailable, "store down")
}
