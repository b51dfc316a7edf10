package generation

import (
	"context"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
)

// defaultGalleryLimit caps a gallery page when the caller doesn't say
const defaultGalleryLimit = 50

// ListGenerations returns an account's generation history, newest first.
// Failed records are included; the gallery renders them with their error
// text.
func (s *Service) ListGenerations(ctx context.Context, accountID string, limit int) ([]*entity.Generation, error) {
	if limit <= 0 {
		limit = defaultGalleryLimit
	}
	return s.generationRepo.ListByAccount(ctx, accountID, limit)
}

// GetGeneration returns one generation record
//
// Possible errors:
// - ErrGenerationNotFound: if no record with the given ID exists
func (s *Service) GetGeneration(ctx context.Context, id string) (*entity.Generation, error) {
	return s.generationRepo.GetByID(ctx, id)
}
