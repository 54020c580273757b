package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/category"
	"github.com/dairydock/catalog-service/internal/category/dto"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) MapRoutes(r *mux.Router) {
	r.HandleFunc("/categories", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/categories", h.List).Methods(http.MethodGet)
	r.HandleFunc("/categories/hierarchy", h.Hierarchy).Methods(http.MethodGet)
	r.HandleFunc("/categories/featured", h.Featured).Methods(http.MethodGet)
	r.HandleFunc("/categories/seed", h.Seed).Methods(http.MethodPost)
	r.HandleFunc("/categories/{identifier}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id}", h.Archive).Methods(http.MethodDelete)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	input := &dto.CreateCategoryInput{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		image, err := httputil.FormImage(r, "image")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		input.Image = image
		input.Name = r.FormValue("name")
		input.Description = r.FormValue("description")
		input.Icon = r.FormValue("icon")
		input.ParentID = r.FormValue("parentCategory")
		input.IsFeatured = r.FormValue("isFeatured") == "true"
		if v := r.FormValue("displayOrder"); v != "" {
			order, err := strconv.Atoi(v)
			if err != nil {
				httputil.WriteError(w, apperr.New(apperr.KindValidation, "displayOrder must be an integer"))
				return
			}
			input.DisplayOrder = order
		}
		if v := r.FormValue("metadata"); v != "" {
			if err := json.Unmarshal([]byte(v), &input.Metadata); err != nil {
				httputil.WriteError(w, apperr.New(apperr.KindValidation, "metadata must be a JSON object"))
				return
			}
		}
	} else {
		var body struct {
			Name         string                 `json:"name"`
			Description  string                 `json:"description"`
			Icon         string                 `json:"icon"`
			ParentID     string                 `json:"parentCategory"`
			IsFeatured   bool                   `json:"isFeatured"`
			DisplayOrder int                    `json:"displayOrder"`
			Metadata     map[string]interface{} `json:"metadata"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.WriteError(w, err)
			return
		}
		input.Name = body.Name
		input.Description = body.Description
		input.Icon = body.Icon
		input.ParentID = body.ParentID
		input.IsFeatured = body.IsFeatured
		input.DisplayOrder = body.DisplayOrder
		input.Metadata = body.Metadata
	}

	c, err := h.uc.CreateCategory(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create category", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := &dto.CategoryFilters{
		Status:    model.CategoryStatus(q.Get("status")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if q.Has("parent") {
		parent := q.Get("parent")
		filters.Parent = &parent
	}
	if v := q.Get("isFeatured"); v != "" {
		featured := v == "true"
		filters.IsFeatured = &featured
	}

	categories, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.uc.Hierarchy(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tree)
}

func (h *CategoryHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	categories, err := h.uc.FeaturedCategories(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Seed(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.SeedDefaults(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["identifier"]
	c, err := h.uc.GetCategory(r.Context(), identifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	input := &dto.UpdateCategoryInput{ID: mux.Vars(r)["id"]}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		image, err := httputil.FormImage(r, "image")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		input.Image = image
		if r.Form.Has("name") {
			v := r.FormValue("name")
			input.Name = &v
		}
		if r.Form.Has("description") {
			v := r.FormValue("description")
			input.Description = &v
		}
		if r.Form.Has("icon") {
			v := r.FormValue("icon")
			input.Icon = &v
		}
		if r.Form.Has("parentCategory") {
			v := r.FormValue("parentCategory")
			input.ParentID = &v
		}
		if r.Form.Has("isFeatured") {
			v := r.FormValue("isFeatured") == "true"
			input.IsFeatured = &v
		}
		if r.Form.Has("status") {
			v := r.FormValue("status")
			input.Status = &v
		}
		if r.Form.Has("displayOrder") {
			order, err := strconv.Atoi(r.FormValue("displayOrder"))
			if err != nil {
				httputil.WriteError(w, apperr.New(apperr.KindValidation, "displayOrder must be an integer"))
				return
			}
			input.DisplayOrder = &order
		}
		if v := r.FormValue("metadata"); v != "" {
			if err := json.Unmarshal([]byte(v), &input.Metadata); err != nil {
				httputil.WriteError(w, apperr.New(apperr.KindValidation, "metadata must be a JSON object"))
				return
			}
		}
	} else {
		var body struct {
			Name         *string                `json:"name"`
			Description  *string                `json:"description"`
			Icon         *string                `json:"icon"`
			ParentID     *string                `json:"parentCategory"`
			IsFeatured   *bool                  `json:"isFeatured"`
			DisplayOrder *int                   `json:"displayOrder"`
			Status       *string                `json:"status"`
			Metadata     map[string]interface{} `json:"metadata"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.WriteError(w, err)
			return
		}
		input.Name = body.Name
		input.Description = body.Description
		input.Icon = body.Icon
		input.ParentID = body.ParentID
		input.IsFeatured = body.IsFeatured
		input.DisplayOrder = body.DisplayOrder
		input.Status = body.Status
		input.Metadata = body.Metadata
	}

	c, err := h.uc.UpdateCategory(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to update category", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.ArchiveCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}
