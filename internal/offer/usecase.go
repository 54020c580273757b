package offer

import (
	"context"

	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/offer/dto"
)

type UseCase interface {
	CreateOffer(ctx context.Context, input *dto.CreateOfferInput) (*model.Offer, error)
	ListOffers(ctx context.Context, activeOnly bool) ([]model.Offer, error)
	UpdateOffer(ctx context.Context, input *dto.UpdateOfferInput) (*model.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
}
