// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"pnyx/internal/domain"
)

// TransactionRepository defines the interface for the wallet transaction log
// and the fee schedule it references.
type TransactionRepository interface {
	// CreateTransaction appends a wallet transaction.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.WalletTransaction) error
	// GetTransactionsByWalletID returns a page of the wallet's transactions,
	// newest first, together with the total count.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
	// GetTransactionTypeByName resolves a fee schedule entry.
	GetTransactionTypeByName(ctx context.Context, q DBExecutor, name domain.TransactionTypeName) (*domain.TransactionType, error)
	// EnsureTransactionType inserts the entry if its name is not registered yet.
	EnsureTransactionType(ctx context.Context, q DBExecutor, name domain.TransactionTypeName, fee decimal.Decimal) error
}
