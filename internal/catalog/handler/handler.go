package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dairydock/catalog-service/internal/catalog"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) MapRoutes(r *mux.Router) {
	r.HandleFunc("/catalog/overview", h.Overview).Methods(http.MethodGet)
}

func (h *CatalogHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.uc.Overview(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}
