package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/auth"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type ImageHandler struct {
	uc     asset.UseCase
	logger logger.ZapLogger
}

func NewImageHandler(uc asset.UseCase, log logger.ZapLogger) *ImageHandler {
	return &ImageHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ImageHandler) MapRoutes(r *mux.Router) {
	r.HandleFunc("/images", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/images", h.List).Methods(http.MethodGet)
	r.HandleFunc("/images/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/images/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, err := httputil.FormImage(r, "image")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if upload == nil {
		httputil.WriteError(w, apperr.New(apperr.KindValidation, "image file is required"))
		return
	}

	image, err := h.uc.UploadImage(r.Context(), upload, r.FormValue("category"), r.FormValue("description"), auth.ActorID(r.Context()))
	if err != nil {
		h.logger.Error("failed to upload image", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, image)
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	images, err := h.uc.ListImages(r.Context(), q.Get("category"), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, images)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	image, err := h.uc.GetImage(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, image)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteImage(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}
