package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
	persistenceport "github.com/littlehunt-studios/generation-processor/internal/domain/port/persistence"
)

// MockAccountRepository is a testify mock for the AccountRepository port
type MockAccountRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method
func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

// Create mocks the Create method
func (m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// AdjustCredits mocks the AdjustCredits method
func (m *MockAccountRepository) AdjustCredits(ctx context.Context, id string, creditDelta, generationDelta, spentDelta int64) (*entity.Account, error) {
	args := m.Called(ctx, id, creditDelta, generationDelta, spentDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

// MockTransactionRepository is a testify mock for the TransactionRepository port
type MockTransactionRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// ListByAccount mocks the ListByAccount method
func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

// SumByAccount mocks the SumByAccount method
func (m *MockTransactionRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGenerationRepository is a testify mock for the GenerationRepository port
type MockGenerationRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockGenerationRepository) Create(ctx context.Context, generation *entity.Generation) error {
	args := m.Called(ctx, generation)
	return args.Error(0)
}

// GetByID mocks the GetByID method
func (m *MockGenerationRepository) GetByID(ctx context.Context, id string) (*entity.Generation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Generation), args.Error(1)
}

// MarkCompleted mocks the MarkCompleted method
func (m *MockGenerationRepository) MarkCompleted(ctx context.Context, id, url string) (bool, error) {
	args := m.Called(ctx, id, url)
	return args.Bool(0), args.Error(1)
}

// MarkFailed mocks the MarkFailed method
func (m *MockGenerationRepository) MarkFailed(ctx context.Context, id, errorText string) (bool, error) {
	args := m.Called(ctx, id, errorText)
	return args.Bool(0), args.Error(1)
}

// ListByAccount mocks the ListByAccount method
func (m *MockGenerationRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.Generation, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Generation), args.Error(1)
}

// FakeUnitOfWork is a pass-through UnitOfWork for use-case tests: Begin
// returns the context unchanged and the bound repositories are the mocks
// supplied at construction.
type FakeUnitOfWork struct {
	Accounts     persistenceport.AccountRepository
	Transactions persistenceport.TransactionRepository

	Begun      int
	Committed  int
	RolledBack int
}

// NewFakeUnitOfWork wires a pass-through unit of work around the given repos
func NewFakeUnitOfWork(accounts persistenceport.AccountRepository, transactions persistenceport.TransactionRepository) *FakeUnitOfWork {
	return &FakeUnitOfWork{Accounts: accounts, Transactions: transactions}
}

// Begin counts the call and returns ctx unchanged
func (f *FakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	f.Begun++
	return ctx, nil
}

// Commit counts the call
func (f *FakeUnitOfWork) Commit(ctx context.Context) error {
	f.Committed++
	return nil
}

// Rollback counts the call
func (f *FakeUnitOfWork) Rollback(ctx context.Context) error {
	f.RolledBack++
	return nil
}

// GetAccountRepository returns the bound account repository
func (f *FakeUnitOfWork) GetAccountRepository(ctx context.Context) persistenceport.AccountRepository {
	return f.Accounts
}

// GetTransactionRepository returns the bound transaction repository
func (f *FakeUnitOfWork) GetTransactionRepository(ctx context.Context) persistenceport.TransactionRepository {
	return f.Transactions
}
