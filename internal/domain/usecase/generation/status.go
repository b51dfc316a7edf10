package generation

import (
	"context"
	"fmt"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
)

// CheckStatus polls an asynchronous generation. Terminal records return
// as-is. For in-flight records the provider job is fetched and, when it
// turned terminal, the record transitions under a conditional update:
// concurrent polls race for the transition and only the winner issues the
// refund on failure, so the debit is reversed at most once.
//
// Possible errors:
// - ErrGenerationNotFound: if no record with the given ID exists
func (s *Service) CheckStatus(ctx context.Context, generationID string) (*entity.Generation, error) {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		return nil, err
	}
	if gen.IsTerminal() || gen.ProviderJobID == "" {
		return gen, nil
	}

	prediction, err := s.providerFor(gen.Model).GetJob(ctx, gen.ProviderJobID)
	if err != nil {
		// Poll failures leave the record in processing; the next poll
		// retries.
		s.logger.Warn("Provider job poll failed", map[string]any{
			"generation_id": generationID,
			"provider_job":  gen.ProviderJobID,
			"error":         err.Error(),
		})
		return gen, nil
	}

	switch prediction.Status {
	case provider.StatusSucceeded:
		won, err := s.generationRepo.MarkCompleted(ctx, gen.ID, prediction.VideoURL)
		if err != nil {
			return nil, err
		}
		gen.MarkCompleted(prediction.VideoURL)
		if won {
			s.logger.Info("Generation job completed", map[string]any{
				"generation_id": gen.ID,
				"provider_job":  gen.ProviderJobID,
			})
		}
		return gen, nil

	case provider.StatusFailed:
		errorText := prediction.Err
		if errorText == "" {
			errorText = "Generation failed"
		}

		won, err := s.generationRepo.MarkFailed(ctx, gen.ID, errorText)
		if err != nil {
			return nil, err
		}
		gen.MarkFailed(errorText)

		// Only the transition winner refunds; losers saw a concurrent
		// poll already reverse the debit.
		if won {
			reason := fmt.Sprintf("Refund: %s", errorText)
			if _, refundErr := s.ledger.RefundCredits(ctx, gen.AccountID, gen.CreditsCost, reason); refundErr != nil {
				s.logger.Error("Refund failed after job failure", map[string]any{
					"generation_id": gen.ID,
					"account_id":    gen.AccountID,
					"amount":        gen.CreditsCost,
					"error":         refundErr.Error(),
				})
			}
		}
		return gen, nil

	default:
		return gen, nil
	}
}
