package entity

import (
	"fmt"
	"time"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
)

// TransactionType represents the kind of ledger entry
type TransactionType string

// Transaction types
const (
	TypeGeneration TransactionType = "generation"
	TypePurchase   TransactionType = "purchase"
	TypeRefund     TransactionType = "refund"
)

// Transaction is an immutable append-only ledger record. The amount is
// signed: negative for debits, positive for credits and refunds. The log
// is the source of truth for balance reconciliation.
type Transaction struct {
	ID          uint64
	AccountID   string
	Type        TransactionType
	Amount      int64 // signed
	Description string
	PaymentID   string // set on purchases only
	CreatedAt   time.Time
}

// NewGenerationTransaction records a debit for a generation
func NewGenerationTransaction(accountID string, cost int64, description string, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if cost <= 0 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidAmount, cost)
	}

	return &Transaction{
		AccountID:   accountID,
		Type:        TypeGeneration,
		Amount:      -cost,
		Description: description,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// NewPurchaseTransaction records a credit top-up
func NewPurchaseTransaction(accountID string, amount int64, paymentID string, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidAmount, amount)
	}

	return &Transaction{
		AccountID:   accountID,
		Type:        TypePurchase,
		Amount:      amount,
		Description: fmt.Sprintf("Purchased %d credits", amount),
		PaymentID:   paymentID,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// NewRefundTransaction records the reversal of a prior generation debit.
// The reason is the human-readable explanation derived from the
// normalized generation error.
func NewRefundTransaction(accountID string, amount int64, reason string, timeProvider coreport.TimeProvider) (*Transaction, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidAmount, amount)
	}

	return &Transaction{
		AccountID:   accountID,
		Type:        TypeRefund,
		Amount:      amount,
		Description: reason,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// IsDebit returns true if this transaction decreased the account's balance
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}
