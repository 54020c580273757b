package usecase

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dairydock/catalog-service/internal/product/dto"
)

func TestSearchBodySortCarriesIDTiebreak(t *testing.T) {
	c := qt.New(t)

	body := buildSearchBody(dto.CatalogQuery{
		Search: "milk",
		Page:   2,
		Limit:  5,
		Sort:   dto.SortSpec{Field: "createdAt", Desc: true},
	})

	sorts, ok := body["sort"].([]map[string]interface{})
	c.Assert(ok, qt.IsTrue)
	c.Assert(sorts, qt.HasLen, 2)
	c.Assert(sorts[0], qt.DeepEquals, map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}})
	// Ties on the primary sort must resolve identically across per-page
	// requests, or pages duplicate and skip items.
	c.Assert(sorts[1], qt.DeepEquals, map[string]interface{}{"id": map[string]interface{}{"order": "asc"}})

	c.Assert(body["track_total_hits"], qt.Equals, true)
	c.Assert(body["from"], qt.Equals, 5)
	c.Assert(body["size"], qt.Equals, 5)
}

func TestSearchBodyNameSortUsesKeywordField(t *testing.T) {
	c := qt.New(t)

	body := buildSearchBody(dto.CatalogQuery{
		Search: "ghee",
		Page:   1,
		Limit:  10,
		Sort:   dto.SortSpec{Field: "name"},
	})

	sorts := body["sort"].([]map[string]interface{})
	c.Assert(sorts[0], qt.DeepEquals, map[string]interface{}{"name.keyword": map[string]interface{}{"order": "asc"}})
}

func TestSearchBodyFilters(t *testing.T) {
	c := qt.New(t)

	min, max := 10.0, 50.0
	disc := 20
	body := buildSearchBody(dto.CatalogQuery{
		Search:      "paneer",
		Category:    "paneer",
		Price:       dto.PriceRange{Min: &min, Max: &max},
		MinDiscount: &disc,
		Stock:       dto.StockInOnly,
		Page:        1,
		Limit:       10,
		Sort:        dto.SortSpec{Field: "createdAt", Desc: true},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]map[string]interface{})
	c.Assert(filters, qt.DeepEquals, []map[string]interface{}{
		{"term": map[string]interface{}{"category": "paneer"}},
		{"range": map[string]interface{}{"discountedPrice": map[string]interface{}{"gte": 10.0, "lte": 50.0}}},
		{"range": map[string]interface{}{"discountPercentage": map[string]interface{}{"gte": 20}}},
		{"term": map[string]interface{}{"inStock": true}},
	})
}
