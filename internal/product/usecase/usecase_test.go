package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/product"
	"github.com/dairydock/catalog-service/internal/product/dto"
	"github.com/dairydock/catalog-service/internal/product/usecase"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type fakeProductRepo struct {
	products map[primitive.ObjectID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[primitive.ObjectID]*model.Product{}}
}

func (r *fakeProductRepo) Insert(_ context.Context, p *model.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	if p, ok := r.products[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) matches(p *model.Product, q dto.CatalogQuery) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Price.Min != nil && p.DiscountedPrice < *q.Price.Min {
		return false
	}
	if q.Price.Max != nil && p.DiscountedPrice > *q.Price.Max {
		return false
	}
	if q.MinDiscount != nil && p.DiscountPercentage < *q.MinDiscount {
		return false
	}
	if q.Stock == dto.StockInOnly && !p.InStock {
		return false
	}
	if q.Stock == dto.StockOutOnly && p.InStock {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hay := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func (r *fakeProductRepo) Query(_ context.Context, q dto.CatalogQuery) ([]model.Product, int64, error) {
	matched := []model.Product{}
	for _, p := range r.products {
		if r.matches(p, q) {
			matched = append(matched, *p)
		}
	}

	sortValue := func(p model.Product) float64 {
		switch q.Sort.Field {
		case "discountedPrice":
			return p.DiscountedPrice
		case "discountPercentage":
			return float64(p.DiscountPercentage)
		case "salesCount":
			return float64(p.SalesCount)
		case "views":
			return float64(p.Views)
		default:
			return float64(p.CreatedAt.UnixNano())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		vi, vj := sortValue(matched[i]), sortValue(matched[j])
		if vi != vj {
			if q.Sort.Desc {
				return vi > vj
			}
			return vi < vj
		}
		// Same tiebreak the store applies so pages never overlap.
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})

	total := int64(len(matched))
	start := q.Skip()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.products[id]; !ok {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) IncrementViews(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Views++
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) FindByCategory(_ context.Context, category string, limit int) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range r.products {
		if p.Category == category && p.InStock {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindPopular(_ context.Context, limit int) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range r.products {
		if p.IsPopular && p.InStock {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindDiscounted(_ context.Context, minDiscount, limit int) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range r.products {
		if p.DiscountPercentage >= minDiscount && p.InStock {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CategoryCounts(_ context.Context) ([]dto.CategoryCount, error) {
	byCategory := map[string]*dto.CategoryCount{}
	for _, p := range r.products {
		cc, ok := byCategory[p.Category]
		if !ok {
			cc = &dto.CategoryCount{Category: p.Category}
			byCategory[p.Category] = cc
		}
		cc.Count++
		if p.InStock {
			cc.AvailableCount++
		}
	}
	out := []dto.CategoryCount{}
	for _, cc := range byCategory {
		out = append(out, *cc)
	}
	return out, nil
}

func (r *fakeProductRepo) RecordSale(_ context.Context, id primitive.ObjectID, quantity int) error {
	p, ok := r.products[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	p.StockQuantity -= quantity
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	p.InStock = p.StockQuantity > 0
	p.SalesCount += int64(quantity)
	return nil
}

type fakeProvider struct {
	stored   int
	released []string
}

func (p *fakeProvider) Store(_ context.Context, _ io.Reader, hints asset.UploadHints) (model.AssetReference, error) {
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

func upload(name string) *asset.Upload {
	return &asset.Upload{Reader: strings.NewReader("img"), FileName: name, ContentType: "image/png", SizeBytes: 3}
}

func newUC(repo product.Repository) product.UseCase {
	return usecase.NewProductUseCase(repo, nil, nil, &fakeProvider{}, logger.NewNop())
}

func createInput(name string, orig, disc float64, qty int) *dto.CreateProductInput {
	return &dto.CreateProductInput{
		Name:            name,
		Category:        "milk",
		OriginalPrice:   orig,
		DiscountedPrice: disc,
		StockQuantity:   qty,
		Image:           upload(name + ".png"),
	}
}

func TestCreateProductDerivations(t *testing.T) {
	c := qt.New(t)
	uc := newUC(newFakeProductRepo())

	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:            "Full Cream Milk",
		Category:        "Milk",
		OriginalPrice:   100,
		DiscountedPrice: 80,
		StockQuantity:   12,
		Tags:            []string{" Fresh ", "fresh", "DAILY"},
		Image:           upload("milk.png"),
	})

	c.Assert(err, qt.IsNil)
	c.Assert(p.Category, qt.Equals, "milk")
	c.Assert(p.DiscountPercentage, qt.Equals, 20)
	c.Assert(p.InStock, qt.IsTrue)
	c.Assert(p.Tags, qt.DeepEquals, []string{"fresh", "daily"})
	c.Assert(p.Image.StorageID, qt.Not(qt.Equals), "")
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name  string
		input *dto.CreateProductInput
	}{
		{name: "missing image", input: &dto.CreateProductInput{Name: "X", Category: "milk", OriginalPrice: 10, DiscountedPrice: 5}},
		{name: "blank name", input: createInput("   ", 10, 5, 1)},
		{name: "unknown category", input: func() *dto.CreateProductInput {
			in := createInput("Bread", 10, 5, 1)
			in.Category = "bakery"
			return in
		}()},
		{name: "zero price", input: createInput("X", 0, 0, 1)},
		{name: "discount above original", input: createInput("X", 50, 60, 1)},
		{name: "negative stock", input: createInput("X", 10, 5, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			uc := newUC(newFakeProductRepo())

			_, err := uc.CreateProduct(context.Background(), tt.input)
			c.Assert(apperr.IsValidation(err), qt.IsTrue)
		})
	}
}

func TestCreateProductStockOverride(t *testing.T) {
	c := qt.New(t)
	uc := newUC(newFakeProductRepo())

	// Explicit inStock wins over the quantity-derived value.
	in := createInput("Preorder Ghee", 500, 450, 0)
	yes := true
	in.InStock = &yes

	p, err := uc.CreateProduct(context.Background(), in)
	c.Assert(err, qt.IsNil)
	c.Assert(p.InStock, qt.IsTrue)
	c.Assert(p.StockQuantity, qt.Equals, 0)
}

func TestGetProductBumpsViews(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	created, err := uc.CreateProduct(context.Background(), createInput("Curd", 60, 55, 4))
	c.Assert(err, qt.IsNil)

	first, err := uc.GetProduct(context.Background(), created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(first.Views, qt.Equals, int64(1))

	second, err := uc.GetProduct(context.Background(), created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(second.Views, qt.Equals, int64(2))

	_, err = uc.GetProduct(context.Background(), primitive.NewObjectID().Hex())
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)

	_, err = uc.GetProduct(context.Background(), "not-an-id")
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestUpdateProductRecomputesDiscount(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	created, err := uc.CreateProduct(context.Background(), createInput("Butter", 100, 80, 5))
	c.Assert(err, qt.IsNil)
	c.Assert(created.DiscountPercentage, qt.Equals, 20)

	newDisc := 90.0
	updated, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:              created.ID.Hex(),
		DiscountedPrice: &newDisc,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.DiscountPercentage, qt.Equals, 10)

	// Merged prices still have to respect the ordering invariant.
	tooHigh := 150.0
	_, err = uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:              created.ID.Hex(),
		DiscountedPrice: &tooHigh,
	})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestUpdateStock(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	created, err := uc.CreateProduct(context.Background(), createInput("Paneer", 200, 180, 10))
	c.Assert(err, qt.IsNil)

	zero := 0
	updated, err := uc.UpdateStock(context.Background(), &dto.UpdateStockInput{
		ID:            created.ID.Hex(),
		StockQuantity: &zero,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.StockQuantity, qt.Equals, 0)
	c.Assert(updated.InStock, qt.IsFalse)

	// Neither field supplied is a caller error.
	_, err = uc.UpdateStock(context.Background(), &dto.UpdateStockInput{ID: created.ID.Hex()})
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestQueryPaginationNeverOverlaps(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	// All products share one price so the sort is decided by the tiebreak.
	for i := 0; i < 7; i++ {
		_, err := uc.CreateProduct(context.Background(), createInput(fmt.Sprintf("Milk %d", i), 50, 40, 3))
		c.Assert(err, qt.IsNil)
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		res, err := uc.Query(context.Background(), dto.CatalogQuery{
			Page:  page,
			Limit: 3,
			Sort:  dto.SortSpec{Field: "discountedPrice"},
		})
		c.Assert(err, qt.IsNil)
		c.Assert(res.Total, qt.Equals, int64(7))
		for _, p := range res.Items {
			c.Assert(seen[p.ID.Hex()], qt.IsFalse)
			seen[p.ID.Hex()] = true
		}
	}
	c.Assert(seen, qt.HasLen, 7)
}

func TestQueryTotalPages(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	for i := 0; i < 5; i++ {
		_, err := uc.CreateProduct(context.Background(), createInput(fmt.Sprintf("Ghee %d", i), 500, 450, 1))
		c.Assert(err, qt.IsNil)
	}

	res, err := uc.Query(context.Background(), dto.CatalogQuery{Page: 1, Limit: 2, Sort: dto.SortSpec{Field: "createdAt"}})
	c.Assert(err, qt.IsNil)
	c.Assert(res.TotalPages, qt.Equals, 3)
	c.Assert(res.Items, qt.HasLen, 2)
}

func TestQueryToleratesHandBuiltQuery(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	_, err := uc.CreateProduct(context.Background(), createInput("Khoya", 90, 85, 2))
	c.Assert(err, qt.IsNil)

	// Zero page and limit fall back to the standard defaults instead of
	// dividing by zero.
	res, err := uc.Query(context.Background(), dto.CatalogQuery{})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Page, qt.Equals, dto.DefaultPage)
	c.Assert(res.Limit, qt.Equals, dto.DefaultLimit)
	c.Assert(res.TotalPages, qt.Equals, 1)
	c.Assert(res.Items, qt.HasLen, 1)
}

func TestProductsByCategory(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	_, err := uc.CreateProduct(context.Background(), createInput("Toned Milk", 50, 45, 2))
	c.Assert(err, qt.IsNil)

	// Unknown category is an error, not an empty page.
	_, err = uc.ProductsByCategory(context.Background(), "bakery", 10)
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)

	// A known category with no stocked products is an empty list.
	products, err := uc.ProductsByCategory(context.Background(), "cheese", 10)
	c.Assert(err, qt.IsNil)
	c.Assert(products, qt.HasLen, 0)

	products, err = uc.ProductsByCategory(context.Background(), "MILK", 10)
	c.Assert(err, qt.IsNil)
	c.Assert(products, qt.HasLen, 1)
}

func TestRecordSaleFloorsStock(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	uc := newUC(repo)

	created, err := uc.CreateProduct(context.Background(), createInput("Lassi", 30, 25, 2))
	c.Assert(err, qt.IsNil)

	err = uc.RecordSale(context.Background(), created.ID.Hex(), 5)
	c.Assert(err, qt.IsNil)

	p, err := repo.FindByID(context.Background(), created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(p.StockQuantity, qt.Equals, 0)
	c.Assert(p.InStock, qt.IsFalse)
	c.Assert(p.SalesCount, qt.Equals, int64(5))

	err = uc.RecordSale(context.Background(), created.ID.Hex(), 0)
	c.Assert(apperr.IsValidation(err), qt.IsTrue)
}

func TestDeleteProductReleasesImage(t *testing.T) {
	c := qt.New(t)
	repo := newFakeProductRepo()
	provider := &fakeProvider{}
	uc := usecase.NewProductUseCase(repo, nil, nil, provider, logger.NewNop())

	created, err := uc.CreateProduct(context.Background(), createInput("Cheese Cubes", 150, 120, 8))
	c.Assert(err, qt.IsNil)

	err = uc.DeleteProduct(context.Background(), created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(provider.released, qt.DeepEquals, []string{created.Image.StorageID})

	gone, err := repo.FindByID(context.Background(), created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(gone, qt.IsNil)
}
