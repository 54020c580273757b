package dto_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/product/dto"
)

func TestBuildCatalogQueryDefaults(t *testing.T) {
	c := qt.New(t)

	q, err := dto.BuildCatalogQuery(dto.QueryParams{})

	c.Assert(err, qt.IsNil)
	c.Assert(q.Page, qt.Equals, dto.DefaultPage)
	c.Assert(q.Limit, qt.Equals, dto.DefaultLimit)
	c.Assert(q.Sort, qt.Equals, dto.SortSpec{Field: "createdAt", Desc: true})
	c.Assert(q.Stock, qt.Equals, dto.StockAny)
	c.Assert(q.Category, qt.Equals, "")
	c.Assert(q.Price.Min, qt.IsNil)
	c.Assert(q.Price.Max, qt.IsNil)
	c.Assert(q.MinDiscount, qt.IsNil)
}

func TestBuildCatalogQueryNormalization(t *testing.T) {
	c := qt.New(t)

	q, err := dto.BuildCatalogQuery(dto.QueryParams{
		Category: "  MILK ",
		Search:   "  fresh ",
		MinPrice: "10",
		MaxPrice: "99.5",
		InStock:  "true",
		Page:     "3",
		Limit:    "5",
		Sort:     "-price",
	})

	c.Assert(err, qt.IsNil)
	c.Assert(q.Category, qt.Equals, "milk")
	c.Assert(q.Search, qt.Equals, "fresh")
	c.Assert(*q.Price.Min, qt.Equals, 10.0)
	c.Assert(*q.Price.Max, qt.Equals, 99.5)
	c.Assert(q.Stock, qt.Equals, dto.StockInOnly)
	c.Assert(q.Page, qt.Equals, 3)
	c.Assert(q.Limit, qt.Equals, 5)
	c.Assert(q.Sort, qt.Equals, dto.SortSpec{Field: "discountedPrice", Desc: true})
	c.Assert(q.Skip(), qt.Equals, 10)
}

func TestBuildCatalogQueryUnknownSortFallsBack(t *testing.T) {
	c := qt.New(t)

	q, err := dto.BuildCatalogQuery(dto.QueryParams{Sort: "-evil.field"})

	c.Assert(err, qt.IsNil)
	c.Assert(q.Sort, qt.Equals, dto.SortSpec{Field: "createdAt", Desc: true})
}

func TestBuildCatalogQueryValidation(t *testing.T) {
	tests := []struct {
		name   string
		params dto.QueryParams
	}{
		{name: "non-numeric min price", params: dto.QueryParams{MinPrice: "ten"}},
		{name: "non-numeric max price", params: dto.QueryParams{MaxPrice: "abc"}},
		{name: "min above max", params: dto.QueryParams{MinPrice: "50", MaxPrice: "10"}},
		{name: "min discount below range", params: dto.QueryParams{MinDiscount: "-1"}},
		{name: "min discount above range", params: dto.QueryParams{MinDiscount: "101"}},
		{name: "min discount not integer", params: dto.QueryParams{MinDiscount: "ten"}},
		{name: "bad inStock", params: dto.QueryParams{InStock: "yes"}},
		{name: "zero page", params: dto.QueryParams{Page: "0"}},
		{name: "negative page", params: dto.QueryParams{Page: "-2"}},
		{name: "zero limit", params: dto.QueryParams{Limit: "0"}},
		{name: "non-numeric limit", params: dto.QueryParams{Limit: "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := dto.BuildCatalogQuery(tt.params)

			c.Assert(err, qt.IsNotNil)
			c.Assert(apperr.IsValidation(err), qt.IsTrue)
		})
	}
}

func TestBuildCatalogQueryStockOutOnly(t *testing.T) {
	c := qt.New(t)

	q, err := dto.BuildCatalogQuery(dto.QueryParams{InStock: "false"})

	c.Assert(err, qt.IsNil)
	c.Assert(q.Stock, qt.Equals, dto.StockOutOnly)
}
