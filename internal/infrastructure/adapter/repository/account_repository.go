package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/model"
)

// AccountRepository implements the AccountRepository port using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts an account model to an entity
func (r *AccountRepository) modelToEntity(accountModel *model.Account) *entity.Account {
	return &entity.Account{
		ID:               accountModel.ID,
		Credits:          accountModel.Credits,
		Tier:             entity.SubscriptionTier(accountModel.Tier),
		TotalGenerations: accountModel.TotalGenerations,
		TotalSpent:       accountModel.TotalSpent,
		CreatedAt:        accountModel.CreatedAt,
		UpdatedAt:        accountModel.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, accountID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Account not found", map[string]any{
			"account_id": accountID,
		})
		return errs.ErrAccountNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"account_id": accountID,
		"error":      err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrDuplicateAccount
	}

	// A serialization conflict means the conditional update lost to a
	// concurrent writer; the caller sees it as a connectivity-class error
	// and the ledger rolls the unit of work back.
	if r.errorClassifier.IsSerializationError(err) || r.errorClassifier.IsConnectionError(err) {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	return fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
}

// GetByID retrieves an account by its identity UID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).First(&accountModel, "id = ?", id)

	if result.Error != nil {
		return nil, r.handleDatabaseError("getting account", result.Error, id)
	}

	return r.modelToEntity(&accountModel), nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		ID:               account.ID,
		Credits:          account.Credits,
		Tier:             string(account.Tier),
		TotalGenerations: account.TotalGenerations,
		TotalSpent:       account.TotalSpent,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&accountModel)
	if result.Error != nil {
		return r.handleDatabaseError("creating account", result.Error, account.ID)
	}

	r.logger.Info("Account created", map[string]any{
		"account_id": account.ID,
		"credits":    account.Credits,
	})
	return nil
}

// AdjustCredits applies the signed deltas as one conditional update. The
// WHERE clause carries the non-negative balance guard, so the check and
// the write are a single atomic statement: a debit that would overdraw
// matches no rows regardless of what concurrent requests are doing.
func (r *AccountRepository) AdjustCredits(ctx context.Context, id string, creditDelta, generationDelta, spentDelta int64) (*entity.Account, error) {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND credits + ? >= 0", id, creditDelta).
		Updates(map[string]interface{}{
			"credits":           gorm.Expr("credits + ?", creditDelta),
			"total_generations": gorm.Expr("total_generations + ?", generationDelta),
			"total_spent":       gorm.Expr("total_spent + ?", spentDelta),
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		return nil, r.handleDatabaseError("adjusting credits", result.Error, id)
	}

	if result.RowsAffected == 0 {
		// Either the account doesn't exist or the guard rejected a debit;
		// a second read tells them apart.
		account, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.logger.Warn("Credit adjustment rejected by balance guard", map[string]any{
			"account_id": id,
			"delta":      creditDelta,
			"available":  account.Credits,
		})
		return nil, errs.NewInsufficientCreditsError(id, -creditDelta, account.Credits)
	}

	return r.GetByID(ctx, id)
}
