package persistence

import (
	"context"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
)

// TransactionRepository defines methods to interact with the append-only
// ledger transaction log. Records are never updated or deleted.
type TransactionRepository interface {
	// Create appends a new ledger transaction
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database is unreachable
	Create(ctx context.Context, transaction *entity.Transaction) error

	// ListByAccount returns an account's transactions, newest first
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database is unreachable
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Transaction, error)

	// SumByAccount returns the sum of all transaction amounts for an
	// account. Used for balance reconciliation against the denormalized
	// credits counter.
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database is unreachable
	SumByAccount(ctx context.Context, accountID string) (int64, error)
}
