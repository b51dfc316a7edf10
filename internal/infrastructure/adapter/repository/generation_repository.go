package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/model"
)

// GenerationRepository implements the GenerationRepository port using GORM
type GenerationRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewGenerationRepository creates a new GenerationRepository instance
func NewGenerationRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *GenerationRepository {
	return &GenerationRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func (r *GenerationRepository) modelToEntity(genModel *model.Generation) *entity.Generation {
	return &entity.Generation{
		ID:            genModel.ID,
		AccountID:     genModel.AccountID,
		Type:          entity.MediaType(genModel.Type),
		URL:           genModel.URL,
		ThumbnailURL:  genModel.ThumbnailURL,
		Prompt:        genModel.Prompt,
		Model:         genModel.Model,
		ModelName:     genModel.ModelName,
		Duration:      genModel.Duration,
		AspectRatio:   genModel.AspectRatio,
		Status:        entity.GenerationStatus(genModel.Status),
		Error:         genModel.Error,
		CreditsCost:   genModel.CreditsCost,
		ProviderJobID: genModel.ProviderJobID,
		CreatedAt:     genModel.CreatedAt,
	}
}

// Create persists a generation record
func (r *GenerationRepository) Create(ctx context.Context, generation *entity.Generation) error {
	genModel := model.Generation{
		ID:            generation.ID,
		AccountID:     generation.AccountID,
		Type:          string(generation.Type),
		URL:           generation.URL,
		ThumbnailURL:  generation.ThumbnailURL,
		Prompt:        generation.Prompt,
		Model:         generation.Model,
		ModelName:     generation.ModelName,
		Duration:      generation.Duration,
		AspectRatio:   generation.AspectRatio,
		Status:        string(generation.Status),
		Error:         generation.Error,
		CreditsCost:   generation.CreditsCost,
		ProviderJobID: generation.ProviderJobID,
		CreatedAt:     generation.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&genModel)
	if result.Error != nil {
		r.logger.Error("Failed to persist generation record", map[string]any{
			"generation_id": generation.ID,
			"account_id":    generation.AccountID,
			"error":         result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}

// GetByID retrieves a generation record
func (r *GenerationRepository) GetByID(ctx context.Context, id string) (*entity.Generation, error) {
	var genModel model.Generation
	result := r.db.WithContext(ctx).First(&genModel, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrGenerationNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&genModel), nil
}

// MarkCompleted transitions processing -> completed under a conditional
// update keyed on the current status. RowsAffected tells the caller
// whether this call won the transition.
func (r *GenerationRepository) MarkCompleted(ctx context.Context, id, url string) (bool, error) {
	return r.transition(ctx, id, map[string]interface{}{
		"status":        string(entity.GenerationCompleted),
		"url":           url,
		"thumbnail_url": url,
	})
}

// MarkFailed transitions processing -> failed with the normalized error
// text, under the same conditional-update rule as MarkCompleted
func (r *GenerationRepository) MarkFailed(ctx context.Context, id, errorText string) (bool, error) {
	return r.transition(ctx, id, map[string]interface{}{
		"status": string(entity.GenerationFailed),
		"error":  errorText,
	})
}

func (r *GenerationRepository) transition(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Generation{}).
		Where("id = ? AND status = ?", id, string(entity.GenerationProcessing)).
		Updates(updates)

	if result.Error != nil {
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		// Lost the race or the record doesn't exist; a read tells them apart
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// ListByAccount returns an account's generation records, newest first
func (r *GenerationRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Generation, error) {
	var genModels []model.Generation
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&genModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	generations := make([]*entity.Generation, 0, len(genModels))
	for i := range genModels {
		generations = append(generations, r.modelToEntity(&genModels[i]))
	}
	return generations, nil
}
