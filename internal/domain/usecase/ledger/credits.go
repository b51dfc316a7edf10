package ledger

import (
	"context"
	"errors"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
)

// DeductCredits atomically charges an account for a generation and appends
// the debit to the transaction log. The balance check and the decrement are
// one conditional update, so two concurrent spends can never overdraw: the
// slower one affects no rows and gets ErrInsufficientCredits.
//
// Possible errors:
// - ErrAccountNotFound: if the account doesn't exist
// - ErrInsufficientCredits: if the balance can't cover the cost
// - ErrInvalidAmount: if cost is not positive
func (s *Service) DeductCredits(ctx context.Context, accountID string, cost int64, description string) (*entity.Account, error) {
	txn, err := entity.NewGenerationTransaction(accountID, cost, description, s.timeProvider)
	if err != nil {
		return nil, err
	}

	account, err := s.applyEntry(ctx, accountID, txn, cost)
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientCredits) {
			s.logger.Warn("Deduction rejected, insufficient credits", map[string]any{
				"account_id": accountID,
				"cost":       cost,
			})
		}
		return nil, err
	}

	s.logger.Info("Credits deducted", map[string]any{
		"account_id":  accountID,
		"cost":        cost,
		"description": description,
		"new_balance": account.Credits,
	})
	return account, nil
}

// AddCredits tops up an account after a completed purchase and logs it
// with the payment reference.
//
// Possible errors:
// - ErrAccountNotFound: if the account doesn't exist
// - ErrInvalidAmount: if amount is not positive
func (s *Service) AddCredits(ctx context.Context, accountID string, amount int64, paymentID string) (*entity.Account, error) {
	txn, err := entity.NewPurchaseTransaction(accountID, amount, paymentID, s.timeProvider)
	if err != nil {
		return nil, err
	}

	account, err := s.applyEntry(ctx, accountID, txn, 0)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credits purchased", map[string]any{
		"account_id":  accountID,
		"amount":      amount,
		"payment_id":  paymentID,
		"new_balance": account.Credits,
	})
	return account, nil
}

// RefundCredits reverses a generation debit after a terminal failure. The
// caller guarantees at-most-once invocation per generation; the reason
// becomes the log record's description.
//
// Possible errors:
// - ErrAccountNotFound: if the account doesn't exist
// - ErrInvalidAmount: if amount is not positive
func (s *Service) RefundCredits(ctx context.Context, accountID string, amount int64, reason string) (*entity.Account, error) {
	txn, err := entity.NewRefundTransaction(accountID, amount, reason, s.timeProvider)
	if err != nil {
		return nil, err
	}

	account, err := s.applyEntry(ctx, accountID, txn, -amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credits refunded", map[string]any{
		"account_id":  accountID,
		"amount":      amount,
		"reason":      reason,
		"new_balance": account.Credits,
	})
	return account, nil
}

// applyEntry runs the paired balance adjustment and log append inside one
// database transaction. spent is the delta for the lifetime-spent counter:
// positive on a debit, negative on a refund, zero on a purchase. The
// generation counter moves with it.
func (s *Service) applyEntry(ctx context.Context, accountID string, txn *entity.Transaction, spent int64) (*entity.Account, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var generationDelta int64
	switch {
	case spent > 0:
		generationDelta = 1
	case spent < 0:
		generationDelta = -1
	}

	accountRepo := s.uow.GetAccountRepository(txCtx)
	account, err := accountRepo.AdjustCredits(txCtx, accountID, txn.Amount, generationDelta, spent)
	if err != nil {
		s.rollback(txCtx, accountID)
		return nil, err
	}

	if err := s.uow.GetTransactionRepository(txCtx).Create(txCtx, txn); err != nil {
		s.rollback(txCtx, accountID)
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.rollback(txCtx, accountID)
		return nil, err
	}
	return account, nil
}

func (s *Service) rollback(ctx context.Context, accountID string) {
	if err := s.uow.Rollback(ctx); err != nil {
		s.logger.Error("Rollback failed", map[string]any{
			"account_id": accountID,
			"error":      err.Error(),
		})
	}
}
