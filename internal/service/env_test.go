package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pnyx/internal/cache"
	"pnyx/internal/domain"
)

const testStakeLifetimeDays = 30

func testFees() map[domain.TransactionTypeName]decimal.Decimal {
	return map[domain.TransactionTypeName]decimal.Decimal{
		domain.TransactionTypeGenesis:               decimal.NewFromInt(100),
		domain.TransactionTypeAddIssue:              decimal.NewFromInt(-5),
		domain.TransactionTypeAddProposal:           decimal.NewFromInt(-2),
		domain.TransactionTypeStakeProposal:         decimal.NewFromInt(-10),
		domain.TransactionTypeStakeProposalRollback: decimal.NewFromInt(10),
	}
}

// testEnv wires the real services over a memStore.
type testEnv struct {
	store   *memStore
	clock   *testClock
	metrics *countingRecorder
	ledger  LedgerService
	staking StakingService
	issues  IssueService

	issueDeps     IssueDeps
	issueSettings IssueSettings
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithFees(t, testFees())
}

func newTestEnvWithFees(t *testing.T, fees map[domain.TransactionTypeName]decimal.Decimal) *testEnv {
	t.Helper()
	store := newMemStore()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uow := store.unitOfWork()
	q := store.executor()
	logger := discardLogger()
	recorder := newCountingRecorder()

	userRepo := memUserRepo{store}
	walletRepo := memWalletRepo{store}
	proposalRepo := memProposalRepo{store}

	ledger := NewLedgerService(uow, q, userRepo, walletRepo, memTransactionRepo{store}, recorder, logger)
	require.NoError(t, ledger.SeedTransactionTypes(context.Background(), fees))

	staking := NewStakingService(StakingDeps{
		UnitOfWork:   uow,
		DBExecutor:   q,
		Ledger:       ledger,
		UserRepo:     userRepo,
		WalletRepo:   walletRepo,
		ProposalRepo: proposalRepo,
		StakeRepo:    memStakeRepo{store},
		Cache:        cache.NopRankingCache{},
		Metrics:      recorder,
		Logger:       logger,
		Now:          clock.Now,
	}, testStakeLifetimeDays)

	issueDeps := IssueDeps{
		UnitOfWork:   uow,
		DBExecutor:   q,
		Ledger:       ledger,
		UserRepo:     userRepo,
		IssueRepo:    memIssueRepo{store},
		ProposalRepo: proposalRepo,
		VoteRepo:     memVoteRepo{store},
		Cache:        cache.NopRankingCache{},
		Metrics:      recorder,
		Logger:       logger,
		Now:          clock.Now,
	}
	issueSettings := IssueSettings{
		TopStakedIssuesPercent:    50,
		TopStakedProposalsPercent: 20,
		MaxDueDays:                365,
	}

	return &testEnv{
		store:         store,
		clock:         clock,
		metrics:       recorder,
		ledger:        ledger,
		staking:       staking,
		issues:        NewIssueService(issueDeps, issueSettings),
		issueDeps:     issueDeps,
		issueSettings: issueSettings,
	}
}

func (e *testEnv) user(t *testing.T, username string) int64 {
	t.Helper()
	user, _, err := e.ledger.CreateUserWithWallet(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) issue(t *testing.T, authorID int64) int64 {
	t.Helper()
	issue, err := e.issues.CreateIssue(context.Background(), authorID, "Library opening hours", "Should the central library open on Sundays?", nil)
	require.NoError(t, err)
	return issue.ID
}

func (e *testEnv) proposal(t *testing.T, issueID, authorID int64) int64 {
	t.Helper()
	proposal, err := e.issues.CreateProposal(context.Background(), issueID, authorID, "Open Sundays", "Open from ten to four every Sunday.")
	require.NoError(t, err)
	return proposal.ID
}

// requireLedgerConsistent checks the stored balance against the transaction log.
func (e *testEnv) requireLedgerConsistent(t *testing.T, userID int64) {
	t.Helper()
	balance := e.store.balanceOf(userID)
	require.True(t, balance.Equal(e.store.ledgerSumOf(userID)), "balance %s != ledger sum %s", balance, e.store.ledgerSumOf(userID))
	require.False(t, balance.IsNegative(), "negative balance %s", balance)
}

func requireBalance(t *testing.T, e *testEnv, userID int64, want int64) {
	t.Helper()
	got := e.store.balanceOf(userID)
	require.True(t, got.Equal(decimal.NewFromInt(want)), "balance = %s, want %d", got, want)
}
