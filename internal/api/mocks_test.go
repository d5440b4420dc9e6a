package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerService) HasEnoughFunding(balance, delta decimal.Decimal) bool {
	return m.Called(balance, delta).Bool(0)
}

func (m *MockLedgerService) AddTransaction(ctx context.Context, q repository.DBExecutor, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, q, userID, name, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockLedgerService) Charge(ctx context.Context, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, userID, name, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockLedgerService) CreateUserWithWallet(ctx context.Context, username string) (*domain.User, *domain.Wallet, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.Wallet), args.Error(2)
}

func (m *MockLedgerService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) SeedTransactionTypes(ctx context.Context, fees map[domain.TransactionTypeName]decimal.Decimal) error {
	return m.Called(ctx, fees).Error(0)
}

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

type MockIssueService struct {
	mock.Mock
}

func (m *MockIssueService) CreateIssue(ctx context.Context, userID int64, title, description string, dueDate *time.Time) (*domain.Issue, error) {
	args := m.Called(ctx, userID, title, description, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockIssueService) GetIssue(ctx context.Context, issueID int64) (*domain.IssueView, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssueView), args.Error(1)
}

func (m *MockIssueService) ListIssues(ctx context.Context) ([]domain.IssueView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.IssueView), args.Error(1)
}

func (m *MockIssueService) GetTopStakedIssues(ctx context.Context, limit int) ([]domain.IssueView, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.IssueView), args.Error(1)
}

func (m *MockIssueService) GetTopStakedIssuesPercentage(ctx context.Context, percentage float64) ([]domain.IssueView, error) {
	args := m.Called(ctx, percentage)
	return args.Get(0).([]domain.IssueView), args.Error(1)
}

func (m *MockIssueService) CreateProposal(ctx context.Context, issueID, userID int64, title, description string) (*domain.Proposal, error) {
	args := m.Called(ctx, issueID, userID, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockIssueService) ListProposals(ctx context.Context, issueID int64) ([]domain.ProposalView, error) {
	args := m.Called(ctx, issueID)
	return args.Get(0).([]domain.ProposalView), args.Error(1)
}

func (m *MockIssueService) GetTopStakedProposals(ctx context.Context, issueID int64, limit int) ([]domain.ProposalView, error) {
	args := m.Called(ctx, issueID, limit)
	return args.Get(0).([]domain.ProposalView), args.Error(1)
}

func (m *MockIssueService) CastVote(ctx context.Context, proposalID, userID int64) (*domain.Vote, error) {
	args := m.Called(ctx, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vote), args.Error(1)
}
