package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/offer"
	"github.com/dairydock/catalog-service/internal/offer/dto"
	"github.com/dairydock/catalog-service/internal/server/httputil"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type OfferHandler struct {
	uc     offer.UseCase
	logger logger.ZapLogger
}

func NewOfferHandler(uc offer.UseCase, log logger.ZapLogger) *OfferHandler {
	return &OfferHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OfferHandler) MapRoutes(r *mux.Router) {
	r.HandleFunc("/offers", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/offers", h.List).Methods(http.MethodGet)
	r.HandleFunc("/offers/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/offers/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateOfferInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}

	o, err := h.uc.CreateOffer(r.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create offer", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	offers, err := h.uc.ListOffers(r.Context(), activeOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offers)
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateOfferInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	input.ID = mux.Vars(r)["id"]

	o, err := h.uc.UpdateOffer(r.Context(), &input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteOffer(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}
