package generation

import (
	"context"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
)

// Capacity retry policy. Only capacity errors are retried in place; every
// other failure class either never improves on retry (auth, moderation,
// bad request) or gets the distinct fallback-model path.
const (
	maxCapacityAttempts = 3
	baseBackoff         = coreport.Second
)

// submitFunc performs one provider submission attempt
type submitFunc func(ctx context.Context) (*provider.Prediction, error)

// submitWithRetry runs a provider submission, retrying capacity failures
// with exponential backoff. It returns the last error when all attempts
// are exhausted.
func (s *Service) submitWithRetry(ctx context.Context, model string, submit submitFunc) (*provider.Prediction, error) {
	var lastErr error

	for attempt := 1; attempt <= maxCapacityAttempts; attempt++ {
		prediction, err := submit(ctx)
		if err == nil {
			return prediction, nil
		}
		lastErr = err

		if !errs.IsRetryable(err) {
			return nil, err
		}
		if attempt == maxCapacityAttempts {
			break
		}

		delay := baseBackoff * coreport.Duration(1<<(attempt-1))
		s.logger.Warn("Provider at capacity, backing off", map[string]any{
			"model":   model,
			"attempt": attempt,
			"backoff": delay.Std().String(),
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		s.timeProvider.Sleep(delay)
	}

	s.logger.Error("Provider capacity retries exhausted", map[string]any{
		"model":    model,
		"attempts": maxCapacityAttempts,
	})
	return nil, lastErr
}

// shouldFallback reports whether a moderation rejection on the given model
// warrants the single transparent retry against the relaxed-filter fallback
// model. Only strict-filter families qualify, and never the fallback model
// itself.
func shouldFallback(model string, err error) bool {
	if !errs.IsContentModerationError(err) {
		return false
	}
	if model == entity.DefaultFallbackModel {
		return false
	}
	return entity.ResolveModel(model).StrictFilter
}
