package generation

import (
	"context"
	"fmt"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
)

// ImageRequest is an image generation request after authentication
type ImageRequest struct {
	AccountID string
	Prompt    string
	Size      string // defaults to 1024x1024
	Quality   string // defaults to standard
}

// imageModelID is the pricing and gallery identity of image generations
const imageModelID = "openai/gpt-image-1"

// GenerateImage runs the image flow: flat one-credit debit, blocking
// provider call, persisted record. Same refund rule as video: a terminal
// provider failure after the debit reverses it exactly once.
//
// Possible errors:
// - ErrEmptyPrompt: if the request carries no prompt
// - ErrInsufficientCredits: if the balance is empty
// - classified provider failures, as for Generate
func (s *Service) GenerateImage(ctx context.Context, req ImageRequest) (*GenerateResponse, error) {
	if req.Prompt == "" {
		return nil, errs.ErrEmptyPrompt
	}
	if req.Size == "" {
		req.Size = "1024x1024"
	}
	if req.Quality == "" {
		req.Quality = "standard"
	}

	if _, err := s.ledger.EnsureAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}

	account, err := s.ledger.DeductCredits(ctx, req.AccountID, entity.ImageCredits, "Image generation")
	if err != nil {
		return nil, err
	}

	image, err := s.submitImageWithRetry(ctx, req)
	if err != nil {
		return s.failImageAndRefund(ctx, req, err)
	}

	gen, genErr := entity.NewGeneration(req.AccountID, entity.MediaImage, req.Prompt, imageModelID, "", "", entity.ImageCredits, s.timeProvider)
	if genErr != nil {
		return nil, genErr
	}
	gen.ProviderJobID = image.ID
	gen.MarkCompleted(image.URL)

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		return nil, err
	}

	s.logger.Info("Image generated", map[string]any{
		"account_id":    req.AccountID,
		"generation_id": gen.ID,
		"size":          req.Size,
	})
	return &GenerateResponse{Generation: gen, Balance: account.Credits}, nil
}

func (s *Service) submitImageWithRetry(ctx context.Context, req ImageRequest) (*provider.Image, error) {
	var image *provider.Image
	_, err := s.submitWithRetry(ctx, imageModelID, func(ctx context.Context) (*provider.Prediction, error) {
		result, err := s.imageProvider.GenerateImage(ctx, req.Prompt, provider.ImageOptions{
			Size:    req.Size,
			Quality: req.Quality,
		})
		if err != nil {
			return nil, err
		}
		image = result
		return &provider.Prediction{ID: result.ID, Status: provider.StatusSucceeded, VideoURL: result.URL}, nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (s *Service) failImageAndRefund(ctx context.Context, req ImageRequest, cause error) (*GenerateResponse, error) {
	gen, genErr := entity.NewGeneration(req.AccountID, entity.MediaImage, req.Prompt, imageModelID, "", "", entity.ImageCredits, s.timeProvider)
	if genErr != nil {
		return nil, genErr
	}
	gen.MarkFailed(errs.HintFor(cause))

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		s.logger.Error("Failed to persist failed image record", map[string]any{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
	}

	reason := fmt.Sprintf("Refund: %s", errs.HintFor(cause))
	account, err := s.ledger.RefundCredits(ctx, req.AccountID, entity.ImageCredits, reason)
	if err != nil {
		s.logger.Error("Refund failed after image failure", map[string]any{
			"account_id": req.AccountID,
			"amount":     entity.ImageCredits,
			"error":      err.Error(),
		})
		return &GenerateResponse{Generation: gen}, cause
	}
	return &GenerateResponse{Generation: gen, Balance: account.Credits}, cause
}
