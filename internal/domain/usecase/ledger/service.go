package ledger

import (
	"context"
	"errors"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/domain/port/persistence"
)

// Service owns every credit balance mutation. All writes go through the
// unit of work so a committed balance change always has exactly one
// matching transaction-log record.
type Service struct {
	uow          persistence.UnitOfWork
	accountRepo  persistence.AccountRepository
	txnRepo      persistence.TransactionRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new ledger service
func NewService(
	uow persistence.UnitOfWork,
	accountRepo persistence.AccountRepository,
	txnRepo persistence.TransactionRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// EnsureAccount returns the account for an identity UID, creating it with
// the starting credit grant on first sign-in. Safe to call on every
// request; a lost creation race falls back to reading the winner's row.
func (s *Service) EnsureAccount(ctx context.Context, accountID string) (*entity.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, errs.ErrAccountNotFound) {
		return nil, err
	}

	account, err = entity.NewAccount(accountID, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, errs.ErrDuplicateAccount) {
			// Another request created the account between our read and write
			return s.accountRepo.GetByID(ctx, accountID)
		}
		return nil, err
	}

	s.logger.Info("Account created with starting credits", map[string]any{
		"account_id": accountID,
		"credits":    account.Credits,
	})
	return account, nil
}

// GetBalance returns the account's current state
//
// Possible errors:
// - ErrAccountNotFound: if the account doesn't exist
func (s *Service) GetBalance(ctx context.Context, accountID string) (*entity.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// HasEnoughCredits reports whether the account can afford the given cost.
// Advisory only: the authoritative check is the conditional update inside
// DeductCredits, so concurrent spends can still fail there.
func (s *Service) HasEnoughCredits(ctx context.Context, accountID string, cost int64) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.CanAfford(cost), nil
}

// defaultHistoryLimit caps a transaction listing when the caller doesn't say
const defaultHistoryLimit = 50

// ListTransactions returns an account's ledger history, newest first
func (s *Service) ListTransactions(ctx context.Context, accountID string, limit int) ([]*entity.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.txnRepo.ListByAccount(ctx, accountID, limit)
}

// ReconcileBalance verifies that the denormalized credits counter equals
// the starting grant plus the signed sum of the transaction log. A false
// result means a balance write bypassed the ledger.
func (s *Service) ReconcileBalance(ctx context.Context, accountID string) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}

	sum, err := s.txnRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	expected := entity.StartingCredits + sum
	if account.Credits != expected {
		s.logger.Error("Balance does not match transaction log", map[string]any{
			"account_id": accountID,
			"credits":    account.Credits,
			"expected":   expected,
		})
		return false, nil
	}
	return true, nil
}
