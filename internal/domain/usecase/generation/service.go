package generation

import (
	"context"
	"fmt"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/persistence"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
	"github.com/littlehunt-studios/generation-processor/internal/domain/usecase/ledger"
)

// Service resolves generation requests: charge, dispatch to the right
// provider, persist the record, and refund on terminal failure. Credits
// are always debited before dispatch; a request that fails the debit
// never reaches a provider.
type Service struct {
	ledger         *ledger.Service
	generationRepo persistence.GenerationRepository
	replicate      provider.VideoProvider
	openai         provider.VideoProvider
	imageProvider  provider.ImageProvider
	timeProvider   coreport.TimeProvider
	logger         coreport.Logger
}

// NewService creates a new generation service
func NewService(
	ledgerService *ledger.Service,
	generationRepo persistence.GenerationRepository,
	replicate provider.VideoProvider,
	openai provider.VideoProvider,
	imageProvider provider.ImageProvider,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		ledger:         ledgerService,
		generationRepo: generationRepo,
		replicate:      replicate,
		openai:         openai,
		imageProvider:  imageProvider,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// GenerateRequest is a video generation request after authentication
type GenerateRequest struct {
	AccountID       string
	Prompt          string
	Model           string
	DurationSeconds int
	AspectRatio     string
	// Async submits the provider job and returns immediately; the caller
	// polls CheckStatus with the generation ID until the record turns
	// terminal.
	Async bool
}

// GenerateResponse carries the persisted record plus the balance after
// the debit (and any refund)
type GenerateResponse struct {
	Generation *entity.Generation
	Balance    int64
}

// Generate runs the full video generation flow: ensure the account
// exists, debit the model's credit cost, dispatch to the provider, and
// persist the outcome. On a terminal provider failure after the debit the
// cost is refunded exactly once and the classified error is returned
// alongside the failed record.
//
// Possible errors:
// - ErrEmptyPrompt, ErrInvalidRequest: if the request is malformed
// - ErrInsufficientCredits: if the balance can't cover the model's cost
// - ErrContentModerationRejected, ErrProviderAuth, ErrModelNotFound,
//   ErrProviderCapacity, ErrProviderUnknown: classified provider failures
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Prompt == "" {
		return nil, errs.ErrEmptyPrompt
	}
	if req.Model == "" {
		return nil, fmt.Errorf("%w: model is required", errs.ErrInvalidRequest)
	}

	if _, err := s.ledger.EnsureAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}

	cost := entity.ModelCredits(req.Model)
	description := fmt.Sprintf("Video generation: %s", entity.ModelDisplayName(req.Model))

	account, err := s.ledger.DeductCredits(ctx, req.AccountID, cost, description)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generation request accepted", map[string]any{
		"account_id": req.AccountID,
		"model":      req.Model,
		"cost":       cost,
		"async":      req.Async,
	})

	if req.Async {
		return s.dispatchAsync(ctx, req, cost, account.Credits)
	}
	return s.dispatchSync(ctx, req, cost, account.Credits)
}

// dispatchSync blocks on the provider until the prediction is terminal,
// trying the fallback model on a moderation rejection of a strict-filter
// family.
func (s *Service) dispatchSync(ctx context.Context, req GenerateRequest, cost, balance int64) (*GenerateResponse, error) {
	model := req.Model
	input := BuildInput(model, req.Prompt, req.DurationSeconds, req.AspectRatio)

	prediction, err := s.submitWithRetry(ctx, model, func(ctx context.Context) (*provider.Prediction, error) {
		return s.providerFor(model).Generate(ctx, model, input)
	})

	if err != nil && shouldFallback(model, err) {
		model, prediction, err = s.retryOnFallback(ctx, req, err)
	}

	if err != nil {
		return s.failAndRefund(ctx, req, model, cost, err)
	}

	gen, genErr := entity.NewGeneration(req.AccountID, entity.MediaVideo, req.Prompt, model, req.Duration(), req.AspectRatio, cost, s.timeProvider)
	if genErr != nil {
		return nil, genErr
	}
	gen.ProviderJobID = prediction.ID
	gen.MarkCompleted(prediction.VideoURL)

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		return nil, err
	}

	s.logger.Info("Generation completed", map[string]any{
		"account_id":    req.AccountID,
		"generation_id": gen.ID,
		"model":         model,
	})
	return &GenerateResponse{Generation: gen, Balance: balance}, nil
}

// dispatchAsync submits the provider job and persists a processing record
// carrying the provider's job handle.
func (s *Service) dispatchAsync(ctx context.Context, req GenerateRequest, cost, balance int64) (*GenerateResponse, error) {
	model := req.Model
	input := BuildInput(model, req.Prompt, req.DurationSeconds, req.AspectRatio)

	prediction, err := s.submitWithRetry(ctx, model, func(ctx context.Context) (*provider.Prediction, error) {
		return s.providerFor(model).CreateJob(ctx, model, input)
	})

	if err != nil && shouldFallback(model, err) {
		model, prediction, err = s.retryJobOnFallback(ctx, req, err)
	}

	if err != nil {
		return s.failAndRefund(ctx, req, model, cost, err)
	}

	gen, genErr := entity.NewGeneration(req.AccountID, entity.MediaVideo, req.Prompt, model, req.Duration(), req.AspectRatio, cost, s.timeProvider)
	if genErr != nil {
		return nil, genErr
	}
	gen.ProviderJobID = prediction.ID

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		return nil, err
	}

	s.logger.Info("Generation job submitted", map[string]any{
		"account_id":    req.AccountID,
		"generation_id": gen.ID,
		"provider_job":  prediction.ID,
		"model":         model,
	})
	return &GenerateResponse{Generation: gen, Balance: balance}, nil
}

// retryOnFallback reruns a moderation-rejected synchronous generation once
// against the relaxed-filter fallback model with the prompt unchanged.
func (s *Service) retryOnFallback(ctx context.Context, req GenerateRequest, cause error) (string, *provider.Prediction, error) {
	model := entity.DefaultFallbackModel
	s.logFallback(req, cause)

	input := BuildInput(model, req.Prompt, req.DurationSeconds, req.AspectRatio)
	prediction, err := s.submitWithRetry(ctx, model, func(ctx context.Context) (*provider.Prediction, error) {
		return s.providerFor(model).Generate(ctx, model, input)
	})
	return model, prediction, err
}

// retryJobOnFallback is the asynchronous counterpart of retryOnFallback
func (s *Service) retryJobOnFallback(ctx context.Context, req GenerateRequest, cause error) (string, *provider.Prediction, error) {
	model := entity.DefaultFallbackModel
	s.logFallback(req, cause)

	input := BuildInput(model, req.Prompt, req.DurationSeconds, req.AspectRatio)
	prediction, err := s.submitWithRetry(ctx, model, func(ctx context.Context) (*provider.Prediction, error) {
		return s.providerFor(model).CreateJob(ctx, model, input)
	})
	return model, prediction, err
}

func (s *Service) logFallback(req GenerateRequest, cause error) {
	s.logger.Warn("Moderation rejection, retrying on fallback model", map[string]any{
		"account_id": req.AccountID,
		"model":      req.Model,
		"fallback":   entity.DefaultFallbackModel,
		"error":      cause.Error(),
	})
}

// failAndRefund persists the failed record and reverses the debit. The
// classified provider error is returned so the transport layer can map it
// to a status code; the failed record travels with it for the response
// body.
func (s *Service) failAndRefund(ctx context.Context, req GenerateRequest, model string, cost int64, cause error) (*GenerateResponse, error) {
	gen, genErr := entity.NewGeneration(req.AccountID, entity.MediaVideo, req.Prompt, model, req.Duration(), req.AspectRatio, cost, s.timeProvider)
	if genErr != nil {
		return nil, genErr
	}
	gen.MarkFailed(errs.HintFor(cause))

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		s.logger.Error("Failed to persist failed generation record", map[string]any{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
	}

	reason := fmt.Sprintf("Refund: %s", errs.HintFor(cause))
	account, err := s.ledger.RefundCredits(ctx, req.AccountID, cost, reason)
	if err != nil {
		// The debit stands without its reversal; reconciliation will
		// surface the drift.
		s.logger.Error("Refund failed after generation failure", map[string]any{
			"account_id": req.AccountID,
			"amount":     cost,
			"error":      err.Error(),
		})
		return &GenerateResponse{Generation: gen}, cause
	}

	s.logger.Info("Generation failed, credits refunded", map[string]any{
		"account_id": req.AccountID,
		"model":      model,
		"amount":     cost,
		"error":      cause.Error(),
	})
	return &GenerateResponse{Generation: gen, Balance: account.Credits}, cause
}

// providerFor picks the upstream client for a model id
func (s *Service) providerFor(model string) provider.VideoProvider {
	if entity.ResolveModel(model).Provider == entity.ProviderOpenAI {
		return s.openai
	}
	return s.replicate
}

// Duration renders the requested duration for the persisted record
func (r GenerateRequest) Duration() string {
	seconds := r.DurationSeconds
	if seconds <= 0 {
		seconds = defaultDurationSeconds
	}
	return fmt.Sprintf("%ds", seconds)
}
