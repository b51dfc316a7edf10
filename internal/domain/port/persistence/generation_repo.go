package persistence

import (
	"context"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
)

// GenerationRepository defines methods to interact with generation records
type GenerationRepository interface {
	// Create persists a new generation record
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database is unreachable
	Create(ctx context.Context, generation *entity.Generation) error

	// GetByID retrieves a generation record by its ID
	//
	// Possible errors:
	// - ErrGenerationNotFound: if no record with the given ID exists
	// - ErrDatabaseConnection: if the database is unreachable
	GetByID(ctx context.Context, id string) (*entity.Generation, error)

	// MarkCompleted transitions a processing record to completed with the
	// result URL. The update is conditional on the current status still
	// being processing; it reports whether this call won the transition.
	// Terminal states are sticky.
	//
	// Possible errors:
	// - ErrGenerationNotFound: if no record with the given ID exists
	// - ErrDatabaseConnection: if the database is unreachable
	MarkCompleted(ctx context.Context, id, url string) (bool, error)

	// MarkFailed transitions a processing record to failed with the
	// normalized error text, under the same conditional-update rule as
	// MarkCompleted. The caller issues the paired refund only when this
	// call reports it won the transition, which keeps the refund exactly
	// once under concurrent status polls.
	//
	// Possible errors:
	// - ErrGenerationNotFound: if no record with the given ID exists
	// - ErrDatabaseConnection: if the database is unreachable
	MarkFailed(ctx context.Context, id, errorText string) (bool, error)

	// ListByAccount returns an account's generation records, newest first
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database is unreachable
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Generation, error)
}
