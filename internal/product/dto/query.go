package dto

import (
	"strconv"
	"strings"

	"github.com/dairydock/catalog-service/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// StockFilter is tri-state: no filter, in-stock only, out-of-stock only.
type StockFilter int

const (
	StockAny StockFilter = iota
	StockInOnly
	StockOutOnly
)

// PriceRange bounds discountedPrice. Either side may be open.
type PriceRange struct {
	Min *float64
	Max *float64
}

type SortSpec struct {
	Field string
	Desc  bool
}

// CatalogQuery is the validated, normalized filter/sort/paginate
// specification consumed by the product catalog. Built once per request by
// BuildCatalogQuery; execution happens elsewhere.
type CatalogQuery struct {
	Category    string // lowercase, empty means no filter
	Price       PriceRange
	MinDiscount *int
	Stock       StockFilter
	Search      string
	Page        int
	Limit       int
	Sort        SortSpec
}

// Skip is the document offset implied by the page and limit.
func (q CatalogQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// QueryParams is the raw, stringly-typed parameter bag as it arrives from
// the caller-facing surface.
type QueryParams struct {
	Category    string
	MinPrice    string
	MaxPrice    string
	MinDiscount string
	InStock     string
	Search      string
	Page        string
	Limit       string
	Sort        string // field name, "-" prefix for descending
}

// Sortable fields; anything else falls back to the default.
var sortFields = map[string]string{
	"createdAt":          "createdAt",
	"name":               "name",
	"price":              "discountedPrice",
	"discountedPrice":    "discountedPrice",
	"discountPercentage": "discountPercentage",
	"salesCount":         "salesCount",
	"views":              "views",
}

// BuildCatalogQuery validates and normalizes the parameter bag. It is pure:
// no store access, no side effects, so every rule is unit-testable.
func BuildCatalogQuery(p QueryParams) (CatalogQuery, error) {
	q := CatalogQuery{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  SortSpec{Field: "createdAt", Desc: true},
	}

	q.Category = strings.ToLower(strings.TrimSpace(p.Category))
	q.Search = strings.TrimSpace(p.Search)

	if p.MinPrice != "" {
		min, err := strconv.ParseFloat(p.MinPrice, 64)
		if err != nil {
			return CatalogQuery{}, apperr.New(apperr.KindValidation, "minPrice must be a number")
		}
		q.Price.Min = &min
	}
	if p.MaxPrice != "" {
		max, err := strconv.ParseFloat(p.MaxPrice, 64)
		if err != nil {
			return CatalogQuery{}, apperr.New(apperr.KindValidation, "maxPrice must be a number")
		}
		q.Price.Max = &max
	}
	if q.Price.Min != nil && q.Price.Max != nil && *q.Price.Min > *q.Price.Max {
		return CatalogQuery{}, apperr.New(apperr.KindValidation, "minPrice cannot exceed maxPrice")
	}

	if p.MinDiscount != "" {
		d, err := strconv.Atoi(p.MinDiscount)
		if err != nil || d < 0 || d > 100 {
			return CatalogQuery{}, apperr.New(apperr.KindValidation, "minDiscount must be an integer between 0 and 100")
		}
		q.MinDiscount = &d
	}

	switch p.InStock {
	case "":
		q.Stock = StockAny
	case "true":
		q.Stock = StockInOnly
	case "false":
		q.Stock = StockOutOnly
	default:
		return CatalogQuery{}, apperr.New(apperr.KindValidation, "inStock must be true or false")
	}

	if p.Page != "" {
		page, err := strconv.Atoi(p.Page)
		if err != nil || page < 1 {
			return CatalogQuery{}, apperr.New(apperr.KindValidation, "page must be a positive integer")
		}
		q.Page = page
	}
	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil || limit < 1 {
			return CatalogQuery{}, apperr.New(apperr.KindValidation, "limit must be a positive integer")
		}
		q.Limit = limit
	}

	if p.Sort != "" {
		field := p.Sort
		desc := false
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			desc = true
		}
		if mapped, ok := sortFields[field]; ok {
			q.Sort = SortSpec{Field: mapped, Desc: desc}
		}
	}

	return q, nil
}
