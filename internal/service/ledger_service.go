// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"pnyx/internal/domain"
	"pnyx/internal/metrics"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// LedgerService defines the wallet ledger: balances, the append-only
// transaction log, and the fee schedule.
type LedgerService interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	HasEnoughFunding(balance, delta decimal.Decimal) bool
	// AddTransaction applies a fee inside the caller's transaction q.
	AddTransaction(ctx context.Context, q repository.DBExecutor, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error)
	// Charge applies a fee in its own unit of work.
	Charge(ctx context.Context, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error)
	CreateUserWithWallet(ctx context.Context, username string) (*domain.User, *domain.Wallet, error)
	GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
	SeedTransactionTypes(ctx context.Context, fees map[domain.TransactionTypeName]decimal.Decimal) error
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	uow             *UnitOfWork
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	metrics         metrics.Recorder
	logger          *slog.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	uow *UnitOfWork,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	recorder metrics.Recorder,
	logger *slog.Logger,
) LedgerService {
	return &ledgerService{
		uow:             uow,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		metrics:         recorder,
		logger:          logger,
	}
}

// HasEnoughFunding reports whether applying delta keeps balance non-negative.
func HasEnoughFunding(balance, delta decimal.Decimal) bool {
	return !balance.Add(delta).IsNegative()
}

func (s *ledgerService) HasEnoughFunding(balance, delta decimal.Decimal) bool {
	return HasEnoughFunding(balance, delta)
}

func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.TotalBalance, nil
}

func (s *ledgerService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: failed to get wallet of user %d: %w", userID, err)
	}
	return wallet, nil
}

// AddTransaction resolves the fee, locks the wallet, checks funding, then
// appends the transaction and moves the balance by the fee. Nothing is written
// when a check fails.
func (s *ledgerService) AddTransaction(ctx context.Context, q repository.DBExecutor, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%s: %w", name, util.ErrTransactionTypeNotFound)
	}
	txType, err := s.transactionRepo.GetTransactionTypeByName(ctx, q, name)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.LockWalletByUserID(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet of user %d: %w", userID, err)
	}

	if !s.HasEnoughFunding(wallet.TotalBalance, txType.Fee) {
		s.metrics.InsufficientFunds(string(name))
		return nil, fmt.Errorf("%s of %s on balance %s: %w", name, txType.Fee, wallet.TotalBalance, util.ErrInsufficientFunds)
	}

	transaction := domain.NewWalletTransaction(wallet.ID, txType, correlationID)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, err
	}
	if err := s.walletRepo.AddToBalance(ctx, q, wallet.ID, txType.Fee); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *ledgerService) Charge(ctx context.Context, userID int64, name domain.TransactionTypeName, correlationID *int64) (*domain.WalletTransaction, error) {
	var transaction *domain.WalletTransaction
	err := s.uow.Do(ctx, "charge", func(q repository.DBExecutor) error {
		var err error
		transaction, err = s.AddTransaction(ctx, q, userID, name, correlationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.WalletTransaction(string(name))
	return transaction, nil
}

// CreateUserWithWallet registers a user, opens the wallet and credits the
// Genesis allowance as one unit.
func (s *ledgerService) CreateUserWithWallet(ctx context.Context, username string) (*domain.User, *domain.Wallet, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, util.NewValidationError("username", "is required")
	}

	var (
		user   *domain.User
		wallet *domain.Wallet
	)
	err := s.uow.Do(ctx, "create user and wallet", func(q repository.DBExecutor) error {
		_, err := s.userRepo.GetUserByUsername(ctx, q, username)
		if err == nil {
			return fmt.Errorf("user with username '%s': %w", username, util.ErrDuplicateEntry)
		}
		if !errors.Is(err, util.ErrNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		user = domain.NewUser(username)
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			return err
		}
		wallet = domain.NewWallet(user.ID)
		if err := s.walletRepo.CreateWallet(ctx, q, wallet); err != nil {
			return err
		}

		genesis, err := s.AddTransaction(ctx, q, user.ID, domain.TransactionTypeGenesis, nil)
		if err != nil {
			return err
		}
		wallet.TotalBalance = wallet.TotalBalance.Add(genesis.Balance)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.WalletTransaction(string(domain.TransactionTypeGenesis))
	s.logger.Info("User registered", "user_id", user.ID, "wallet_id", wallet.ID)
	return user, wallet, nil
}

// GetTransactionHistory retrieves a paginated list of the user's wallet transactions.
func (s *ledgerService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("transaction history: %w", err)
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// SeedTransactionTypes registers every fee schedule entry that is missing.
// Entries already present keep their fee; a configured fee that differs from
// the stored one is logged.
func (s *ledgerService) SeedTransactionTypes(ctx context.Context, fees map[domain.TransactionTypeName]decimal.Decimal) error {
	return s.uow.Do(ctx, "seed transaction types", func(q repository.DBExecutor) error {
		for _, name := range domain.TransactionTypeNames {
			fee, ok := fees[name]
			if !ok {
				return fmt.Errorf("no fee configured for %s", name)
			}
			if err := s.transactionRepo.EnsureTransactionType(ctx, q, name, fee); err != nil {
				return err
			}
			stored, err := s.transactionRepo.GetTransactionTypeByName(ctx, q, name)
			if err != nil {
				return err
			}
			if !stored.Fee.Equal(fee) {
				s.logger.Warn("Configured fee ignored, stored fee kept",
					"type", name, "configured_fee", fee.String(), "stored_fee", stored.Fee.String())
			}
		}
		return nil
	})
}
