package persistence

import (
	"context"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
)

// AccountRepository defines methods to interact with account data
type AccountRepository interface {
	// GetByID retrieves an account by its external identity UID
	//
	// Possible errors:
	// - ErrAccountNotFound: if no account with the given ID exists
	// - ErrDatabaseConnection: if the database is unreachable
	GetByID(ctx context.Context, id string) (*entity.Account, error)

	// Create creates a new account. Used on first sign-in.
	//
	// Possible errors:
	// - ErrDuplicateAccount: if the account already exists
	// - ErrDatabaseConnection: if the database is unreachable
	Create(ctx context.Context, account *entity.Account) error

	// AdjustCredits applies a signed credit delta plus counter deltas as one
	// atomic conditional update. The write is guarded so the balance can
	// never go below zero: a debit that would overdraw affects no rows and
	// returns ErrInsufficientCredits. This is the only write path for the
	// credits field.
	//
	// Possible errors:
	// - ErrAccountNotFound: if the account doesn't exist
	// - ErrInsufficientCredits: if a debit would leave the balance negative
	// - ErrDatabaseConnection: if the database is unreachable
	AdjustCredits(ctx context.Context, id string, creditDelta, generationDelta, spentDelta int64) (*entity.Account, error)
}
