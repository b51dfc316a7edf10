package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/model"
)

// TransactionRepository implements the TransactionRepository port using GORM
type TransactionRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) modelToEntity(txnModel *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:          txnModel.ID,
		AccountID:   txnModel.AccountID,
		Type:        entity.TransactionType(txnModel.Type),
		Amount:      txnModel.Amount,
		Description: txnModel.Description,
		PaymentID:   txnModel.PaymentID,
		CreatedAt:   txnModel.CreatedAt,
	}
}

// Create appends a ledger transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	txnModel := model.Transaction{
		AccountID:   transaction.AccountID,
		Type:        string(transaction.Type),
		Amount:      transaction.Amount,
		Description: transaction.Description,
		PaymentID:   transaction.PaymentID,
		CreatedAt:   transaction.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&txnModel)
	if result.Error != nil {
		r.logger.Error("Failed to append ledger transaction", map[string]any{
			"account_id": transaction.AccountID,
			"type":       transaction.Type,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction.ID = txnModel.ID
	return nil
}

// ListByAccount returns an account's transactions, newest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Transaction, error) {
	var txnModels []model.Transaction
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txnModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transactions := make([]*entity.Transaction, 0, len(txnModels))
	for i := range txnModels {
		transactions = append(transactions, r.modelToEntity(&txnModels[i]))
	}
	return transactions, nil
}

// SumByAccount returns the signed sum of an account's transaction amounts
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum)

	if result.Error != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return sum, nil
}
