package usecase

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
	"github.com/dairydock/catalog-service/pkg/logger"
)

var imageCategories = map[string]struct{}{
	"product": {},
	"banner":  {},
	"profile": {},
	"other":   {},
}

type assetUseCase struct {
	repo     asset.Repository
	provider asset.Provider
	logger   logger.ZapLogger
}

func NewAssetUseCase(repo asset.Repository, provider asset.Provider, log logger.ZapLogger) asset.UseCase {
	return &assetUseCase{
		repo:     repo,
		provider: provider,
		logger:   log,
	}
}

func (uc *assetUseCase) UploadImage(ctx context.Context, upload *asset.Upload, category, description string, uploadedBy *primitive.ObjectID) (*model.ImageAsset, error) {
	if upload == nil || upload.Reader == nil {
		return nil, apperr.New(apperr.KindValidation, "image file is required")
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = "other"
	}
	if _, ok := imageCategories[category]; !ok {
		return nil, apperr.New(apperr.KindValidation, "image category must be one of product, banner, profile, other")
	}

	ref, err := uc.provider.Store(ctx, upload.Reader, asset.UploadHints{
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Folder:      "library",
		SizeBytes:   upload.SizeBytes,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	image := &model.ImageAsset{
		BaseModel:    model.BaseModel{CreatedAt: now, UpdatedAt: now},
		FileName:     ref.StorageID,
		OriginalName: upload.FileName,
		MimeType:     upload.ContentType,
		Reference:    ref,
		Category:     category,
		Description:  description,
		UploadedBy:   uploadedBy,
		IsActive:     true,
	}

	if err := uc.repo.Insert(ctx, image); err != nil {
		if relErr := uc.provider.Release(ctx, ref.StorageID); relErr != nil {
			uc.logger.Error("failed to release image after insert failure", zap.String("storage_id", ref.StorageID), zap.Error(relErr))
		}
		return nil, err
	}

	uc.logger.Info("image uploaded", zap.String("image_id", image.ID.Hex()), zap.String("category", category))
	return image, nil
}

func (uc *assetUseCase) GetImage(ctx context.Context, rawID string) (*model.ImageAsset, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid image id")
	}
	image, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperr.New(apperr.KindNotFound, "image not found")
	}
	return image, nil
}

func (uc *assetUseCase) ListImages(ctx context.Context, category string, limit int) ([]model.ImageAsset, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if limit <= 0 {
		limit = 50
	}
	return uc.repo.FindAll(ctx, category, limit)
}

func (uc *assetUseCase) DeleteImage(ctx context.Context, rawID string) error {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return apperr.New(apperr.KindValidation, "invalid image id")
	}

	image, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if image == nil {
		return apperr.New(apperr.KindNotFound, "image not found")
	}

	// Binary first; Release is idempotent so a retry after a failed
	// document delete is safe.
	if err := uc.provider.Release(ctx, image.Reference.StorageID); err != nil {
		uc.logger.Error("failed to release image binary", zap.String("storage_id", image.Reference.StorageID), zap.Error(err))
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("image deleted", zap.String("image_id", rawID))
	return nil
}
