package usecase

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/internal/offer"
	"github.com/dairydock/catalog-service/internal/offer/dto"
	"github.com/dairydock/catalog-service/pkg/logger"
)

type offerUseCase struct {
	repo   offer.Repository
	logger logger.ZapLogger
}

func NewOfferUseCase(repo offer.Repository, log logger.ZapLogger) offer.UseCase {
	return &offerUseCase{repo: repo, logger: log}
}

func (uc *offerUseCase) CreateOffer(ctx context.Context, input *dto.CreateOfferInput) (*model.Offer, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperr.New(apperr.KindValidation, "offer message is required")
	}

	offerType := model.OfferTypeMarquee
	if input.Type != "" {
		if !model.IsValidOfferType(input.Type) {
			return nil, apperr.New(apperr.KindValidation, "unknown offer type: "+input.Type)
		}
		offerType = input.Type
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	priority := 1
	if input.Priority != nil {
		if *input.Priority < 1 || *input.Priority > 10 {
			return nil, apperr.New(apperr.KindValidation, "offer priority must be between 1 and 10")
		}
		priority = *input.Priority
	}

	now := time.Now()
	start := now
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil && input.EndDate.Before(start) {
		return nil, apperr.New(apperr.KindValidation, "offer end date must not precede its start date")
	}

	o := &model.Offer{
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
		Message:   message,
		Type:      offerType,
		Active:    active,
		Priority:  priority,
		StartDate: start,
		EndDate:   input.EndDate,
	}

	if err := uc.repo.Insert(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info("offer created", zap.String("offer_id", o.ID.Hex()))
	return o, nil
}

func (uc *offerUseCase) ListOffers(ctx context.Context, activeOnly bool) ([]model.Offer, error) {
	if activeOnly {
		return uc.repo.FindActive(ctx)
	}
	return uc.repo.FindAll(ctx)
}

func (uc *offerUseCase) UpdateOffer(ctx context.Context, input *dto.UpdateOfferInput) (*model.Offer, error) {
	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid offer id")
	}

	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, "offer not found")
	}

	if input.Message != nil {
		message := strings.TrimSpace(*input.Message)
		if message == "" {
			return nil, apperr.New(apperr.KindValidation, "offer message cannot be empty")
		}
		o.Message = message
	}
	if input.Type != nil {
		if !model.IsValidOfferType(*input.Type) {
			return nil, apperr.New(apperr.KindValidation, "unknown offer type: "+*input.Type)
		}
		o.Type = *input.Type
	}
	if input.Active != nil {
		o.Active = *input.Active
	}
	if input.Priority != nil {
		if *input.Priority < 1 || *input.Priority > 10 {
			return nil, apperr.New(apperr.KindValidation, "offer priority must be between 1 and 10")
		}
		o.Priority = *input.Priority
	}
	if input.StartDate != nil {
		o.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		o.EndDate = input.EndDate
	}
	if o.EndDate != nil && o.EndDate.Before(o.StartDate) {
		return nil, apperr.New(apperr.KindValidation, "offer end date must not precede its start date")
	}

	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *offerUseCase) DeleteOffer(ctx context.Context, rawID string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid offer id")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("offer deleted", zap.String("offer_id", rawID))
	return nil
}
