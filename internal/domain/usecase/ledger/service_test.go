package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/logger"
	coremocks "github.com/littlehunt-studios/generation-processor/mocks/port/core"
	persistencemocks "github.com/littlehunt-studios/generation-processor/mocks/port/persistence"
)

type ledgerFixture struct {
	service     *Service
	accountRepo *persistencemocks.MockAccountRepository
	txnRepo     *persistencemocks.MockTransactionRepository
	uow         *persistencemocks.FakeUnitOfWork
}

func newLedgerFixture() *ledgerFixture {
	accountRepo := new(persistencemocks.MockAccountRepository)
	txnRepo := new(persistencemocks.MockTransactionRepository)
	uow := persistencemocks.NewFakeUnitOfWork(accountRepo, txnRepo)
	tp := coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	return &ledgerFixture{
		service:     NewService(uow, accountRepo, txnRepo, tp, logger.NewNoopLogger()),
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		uow:         uow,
	}
}

func TestEnsureAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the existing account untouched", func(t *testing.T) {
		f := newLedgerFixture()
		existing := &entity.Account{ID: "uid-abc", Credits: 7}
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(existing, nil)

		account, err := f.service.EnsureAccount(ctx, "uid-abc")

		require.NoError(t, err)
		assert.Equal(t, existing, account)
		f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates the account with starting credits on first sign-in", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-new").Return(nil, errs.ErrAccountNotFound)
		f.accountRepo.On("Create", ctx, mock.MatchedBy(func(a *entity.Account) bool {
			return a.ID == "uid-new" && a.Credits == entity.StartingCredits && a.Tier == entity.TierFree
		})).Return(nil)

		account, err := f.service.EnsureAccount(ctx, "uid-new")

		require.NoError(t, err)
		assert.Equal(t, entity.StartingCredits, account.Credits)
	})

	t.Run("lost creation race falls back to the winner's row", func(t *testing.T) {
		f := newLedgerFixture()
		winner := &entity.Account{ID: "uid-race", Credits: 3}
		f.accountRepo.On("GetByID", ctx, "uid-race").Return(nil, errs.ErrAccountNotFound).Once()
		f.accountRepo.On("Create", ctx, mock.Anything).Return(errs.ErrDuplicateAccount)
		f.accountRepo.On("GetByID", ctx, "uid-race").Return(winner, nil).Once()

		account, err := f.service.EnsureAccount(ctx, "uid-race")

		require.NoError(t, err)
		assert.Equal(t, winner, account)
	})

	t.Run("propagates unexpected repository errors", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(nil, errs.ErrDatabaseConnection)

		_, err := f.service.EnsureAccount(ctx, "uid-abc")

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	})
}

func TestHasEnoughCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("balance covers the cost", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(&entity.Account{ID: "uid-abc", Credits: 3}, nil)

		ok, err := f.service.HasEnoughCredits(ctx, "uid-abc", 3)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("balance short of the cost", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(&entity.Account{ID: "uid-abc", Credits: 1}, nil)

		ok, err := f.service.HasEnoughCredits(ctx, "uid-abc", 2)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-missing").Return(nil, errs.ErrAccountNotFound)

		_, err := f.service.HasEnoughCredits(ctx, "uid-missing", 1)

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})
}

func TestDeductCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("debits the balance and appends the log record in one transaction", func(t *testing.T) {
		f := newLedgerFixture()
		updated := &entity.Account{ID: "uid-abc", Credits: 0, TotalGenerations: 1, TotalSpent: 3}
		f.accountRepo.On("AdjustCredits", ctx, "uid-abc", int64(-3), int64(1), int64(3)).Return(updated, nil)
		f.txnRepo.On("Create", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypeGeneration && txn.Amount == -3 && txn.AccountID == "uid-abc"
		})).Return(nil)

		account, err := f.service.DeductCredits(ctx, "uid-abc", 3, "Video generation: Sora 2")

		require.NoError(t, err)
		assert.Equal(t, int64(0), account.Credits)
		assert.Equal(t, 1, f.uow.Begun)
		assert.Equal(t, 1, f.uow.Committed)
		assert.Equal(t, 0, f.uow.RolledBack)
	})

	t.Run("insufficient balance rolls back and appends nothing", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("AdjustCredits", ctx, "uid-abc", int64(-2), int64(1), int64(2)).
			Return(nil, errs.NewInsufficientCreditsError("uid-abc", 2, 1))

		_, err := f.service.DeductCredits(ctx, "uid-abc", 2, "Video generation: Hailuo 02")

		assert.ErrorIs(t, err, errs.ErrInsufficientCredits)
		assert.Equal(t, 1, f.uow.RolledBack)
		assert.Equal(t, 0, f.uow.Committed)
		f.txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("log append failure rolls back the debit", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("AdjustCredits", ctx, "uid-abc", int64(-1), int64(1), int64(1)).
			Return(&entity.Account{ID: "uid-abc", Credits: 2}, nil)
		f.txnRepo.On("Create", ctx, mock.Anything).Return(errs.ErrDatabaseConnection)

		_, err := f.service.DeductCredits(ctx, "uid-abc", 1, "Video generation: Luma Ray")

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.Equal(t, 1, f.uow.RolledBack)
		assert.Equal(t, 0, f.uow.Committed)
	})

	t.Run("rejects non-positive cost before touching the store", func(t *testing.T) {
		f := newLedgerFixture()

		_, err := f.service.DeductCredits(ctx, "uid-abc", 0, "x")

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		assert.Equal(t, 0, f.uow.Begun)
	})
}

func TestAddCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the balance without moving usage counters", func(t *testing.T) {
		f := newLedgerFixture()
		updated := &entity.Account{ID: "uid-abc", Credits: 63}
		f.accountRepo.On("AdjustCredits", ctx, "uid-abc", int64(60), int64(0), int64(0)).Return(updated, nil)
		f.txnRepo.On("Create", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypePurchase && txn.Amount == 60 && txn.PaymentID == "pi_12345"
		})).Return(nil)

		account, err := f.service.AddCredits(ctx, "uid-abc", 60, "pi_12345")

		require.NoError(t, err)
		assert.Equal(t, int64(63), account.Credits)
		assert.Equal(t, 1, f.uow.Committed)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("AdjustCredits", ctx, "uid-missing", int64(10), int64(0), int64(0)).
			Return(nil, errs.ErrAccountNotFound)

		_, err := f.service.AddCredits(ctx, "uid-missing", 10, "pi_67890")

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
		assert.Equal(t, 1, f.uow.RolledBack)
	})
}

func TestRefundCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("reverses the debit and the usage counters", func(t *testing.T) {
		f := newLedgerFixture()
		updated := &entity.Account{ID: "uid-abc", Credits: 3}
		f.accountRepo.On("AdjustCredits", ctx, "uid-abc", int64(3), int64(-1), int64(-3)).Return(updated, nil)
		f.txnRepo.On("Create", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypeRefund && txn.Amount == 3 && txn.Description == "Refund: provider at capacity"
		})).Return(nil)

		account, err := f.service.RefundCredits(ctx, "uid-abc", 3, "Refund: provider at capacity")

		require.NoError(t, err)
		assert.Equal(t, int64(3), account.Credits)
		assert.Equal(t, 1, f.uow.Committed)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newLedgerFixture()

		_, err := f.service.RefundCredits(ctx, "uid-abc", 0, "oops")

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		assert.Equal(t, 0, f.uow.Begun)
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the caller's limit through", func(t *testing.T) {
		f := newLedgerFixture()
		txns := []*entity.Transaction{{ID: "txn-1", AccountID: "uid-abc", Amount: -3}}
		f.txnRepo.On("ListByAccount", ctx, "uid-abc", 10).Return(txns, nil)

		got, err := f.service.ListTransactions(ctx, "uid-abc", 10)

		require.NoError(t, err)
		assert.Equal(t, txns, got)
	})

	t.Run("no limit falls back to the default page size", func(t *testing.T) {
		f := newLedgerFixture()
		f.txnRepo.On("ListByAccount", ctx, "uid-abc", defaultHistoryLimit).
			Return([]*entity.Transaction{}, nil)

		_, err := f.service.ListTransactions(ctx, "uid-abc", 0)

		require.NoError(t, err)
		f.txnRepo.AssertExpectations(t)
	})
}

func TestReconcileBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("balance matches starting grant plus log sum", func(t *testing.T) {
		f := newLedgerFixture()
		// 3 starting + (-3 generation) + 60 purchase = 60
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(&entity.Account{ID: "uid-abc", Credits: 60}, nil)
		f.txnRepo.On("SumByAccount", ctx, "uid-abc").Return(int64(57), nil)

		ok, err := f.service.ReconcileBalance(ctx, "uid-abc")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("drift is reported", func(t *testing.T) {
		f := newLedgerFixture()
		f.accountRepo.On("GetByID", ctx, "uid-abc").Return(&entity.Account{ID: "uid-abc", Credits: 61}, nil)
		f.txnRepo.On("SumByAccount", ctx, "uid-abc").Return(int64(57), nil)

		ok, err := f.service.ReconcileBalance(ctx, "uid-abc")

		require.NoError(t, err)
		assert.False(t, ok)
	})
}
