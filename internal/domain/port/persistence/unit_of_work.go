package persistence

import (
	"context"
)

// UnitOfWork coordinates the ledger's paired writes (balance adjustment +
// transaction-log append) inside one database transaction so that every
// committed balance change has exactly one corresponding log record.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository
}
