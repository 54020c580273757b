package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/auth"
	"github.com/dairydock/catalog-service/internal/product"
	"github.com/dairydock/catalog-service/internal/product/dto"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) MapRoutes(r *mux.Router) {
	r.HandleFunc("/products", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/products", h.Query).Methods(http.MethodGet)
	r.HandleFunc("/products/popular", h.Popular).Methods(http.MethodGet)
	r.HandleFunc("/products/discounted", h.Discounted).Methods(http.MethodGet)
	r.HandleFunc("/products/category-counts", h.CategoryCounts).Methods(http.MethodGet)
	r.HandleFunc("/products/category/{category}", h.ByCategory).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}/stock", h.UpdateStock).Methods(http.MethodPatch)
	r.HandleFunc("/products/{id}/popular", h.MarkPopular).Methods(http.MethodPatch)
	r.HandleFunc("/products/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	image, err := httputil.FormImage(r, "image")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	input := &dto.CreateProductInput{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		IsFeatured:  r.FormValue("isFeatured") == "true",
		Image:       image,
		CreatedBy:   auth.ActorID(r.Context()),
	}
	if v := r.FormValue("originalPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.WriteError(w, apperr.New(apperr.KindValidation, "originalPrice must be a number"))
			return
		}
		input.OriginalPrice = price
	}
	if v := r.FormValue("discountedPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.WriteError(w, apperr.New(apperr.KindValidation, "discountedPrice must be a number"))
			return
		}
		input.DiscountedPrice = price
	}
	if v := r.FormValue("stockQuantity"); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteError(w, apperr.New(apperr.KindValidation, "stockQuantity must be an integer"))
			return
		}
		input.StockQuantity = qty
	}
	if r.Form.Has("inStock") {
		inStock := r.FormValue("inStock") == "true"
		input.InStock = &inStock
	}
	if v := r.FormValue("tags"); v != "" {
		input.Tags = splitTags(v)
	}

	p, err := h.uc.CreateProduct(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := dto.QueryParams{
		Category:    q.Get("category"),
		MinPrice:    q.Get("minPrice"),
		MaxPrice:    q.Get("maxPrice"),
		MinDiscount: q.Get("minDiscount"),
		InStock:     q.Get("inStock"),
		Search:      q.Get("search"),
		Page:        q.Get("page"),
		Limit:       q.Get("limit"),
		Sort:        q.Get("sort"),
	}

	query, err := dto.BuildCatalogQuery(params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.uc.Query(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.uc.PopularProducts(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Discounted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minDiscount, _ := strconv.Atoi(q.Get("minDiscount"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	products, err := h.uc.DiscountedProducts(r.Context(), minDiscount, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.uc.CategoryCounts(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.uc.ProductsByCategory(r.Context(), mux.Vars(r)["category"], limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	image, err := httputil.FormImage(r, "image")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	input := &dto.UpdateProductInput{
		ID:        mux.Vars(r)["id"],
		Image:     image,
		UpdatedBy: auth.ActorID(r.Context()),
	}
	if r.Form.Has("name") {
		v := r.FormValue("name")
		input.Name = &v
	}
	if r.Form.Has("category") {
		v := r.FormValue("category")
		input.Category = &v
	}
	if r.Form.Has("originalPrice") {
		price, err := strconv.ParseFloat(r.FormValue("originalPrice"), 64)
		if err != nil {
			httputil.WriteError(w, apperr.New(apperr.KindValidation, "originalPrice must be a number"))
			return
		}
		input.OriginalPrice = &price
	}
	if r.Form.Has("discountedPrice") {
		price, err := strconv.ParseFloat(r.FormValue("discountedPrice"), 64)
		if err != nil {
			httputil.WriteError(w, apperr.New(apperr.KindValidation, "discountedPrice must be a number"))
			return
		}
		input.DiscountedPrice = &price
	}
	if r.Form.Has("description") {
		v := r.FormValue("description")
		input.Description = &v
	}
	if r.Form.Has("tags") {
		input.Tags = splitTags(r.FormValue("tags"))
	}
	if r.Form.Has("isFeatured") {
		v := r.FormValue("isFeatured") == "true"
		input.IsFeatured = &v
	}
	if r.Form.Has("isPopular") {
		v := r.FormValue("isPopular") == "true"
		input.IsPopular = &v
	}

	p, err := h.uc.UpdateProduct(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to update product", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StockQuantity *int  `json:"stockQuantity"`
		InStock       *bool `json:"inStock"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	input := &dto.UpdateStockInput{
		ID:            mux.Vars(r)["id"],
		StockQuantity: body.StockQuantity,
		InStock:       body.InStock,
		UpdatedBy:     auth.ActorID(r.Context()),
	}

	p, err := h.uc.UpdateStock(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) MarkPopular(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.MarkPopular(r.Context(), mux.Vars(r)["id"], auth.ActorID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
