package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTxController is a mock implementation of db.TxController that also
// satisfies repository.DBExecutor through the embedded MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newMockUnitOfWork builds a UnitOfWork whose transactions are tx.
func newMockUnitOfWork(tx *MockTxController) *UnitOfWork {
	return NewUnitOfWork(
		nil,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return tx, nil
		},
		func(db.TxController) error {
			return tx.Commit()
		},
		func(db.TxController) {
			_ = tx.Rollback()
		},
	)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) LockWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AddToBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, delta)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetTransactionTypeByName(ctx context.Context, q repository.DBExecutor, name domain.TransactionTypeName) (*domain.TransactionType, error) {
	args := m.Called(ctx, q, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionType), args.Error(1)
}

func (m *MockTransactionRepository) EnsureTransactionType(ctx context.Context, q repository.DBExecutor, name domain.TransactionTypeName, fee decimal.Decimal) error {
	args := m.Called(ctx, q, name, fee)
	return args.Error(0)
}

// MockStakingService is a mock implementation of StakingService.
type MockStakingService struct {
	mock.Mock
}

func (m *MockStakingService) Stake(ctx context.Context, issueID, proposalID, userID int64) (*domain.StakedProposal, error) {
	args := m.Called(ctx, issueID, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StakedProposal), args.Error(1)
}

func (m *MockStakingService) StakeProposal(ctx context.Context, proposalID, userID int64) (*domain.StakedProposal, error) {
	args := m.Called(ctx, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StakedProposal), args.Error(1)
}

func (m *MockStakingService) RollbackInvalidStakedProposals(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStakingService) GetActiveStakes(ctx context.Context, userID int64) ([]domain.StakedProposal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.StakedProposal), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable time source.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingRecorder is a metrics.Recorder that keeps event counts in memory.
type countingRecorder struct {
	mu                sync.Mutex
	insufficientFunds map[string]int
	rolledBack        map[string]int
	stakesCreated     int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{insufficientFunds: map[string]int{}, rolledBack: map[string]int{}}
}

func (c *countingRecorder) StakeCreated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stakesCreated++
}

func (c *countingRecorder) StakeRolledBack(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rolledBack[reason]++
}

func (c *countingRecorder) WalletTransaction(string) {}

func (c *countingRecorder) InsufficientFunds(operation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insufficientFunds[operation]++
}

func (c *countingRecorder) SweepCompleted(int, time.Duration) {}

func (c *countingRecorder) insufficientFundsCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.insufficientFunds))
	for k, v := range c.insufficientFunds {
		out[k] = v
	}
	return out
}
