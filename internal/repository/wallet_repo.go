// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"pnyx/internal/domain"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves the wallet owned by a user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// LockWalletByUserID retrieves the user's wallet and locks its row until
	// the surrounding transaction ends.
	LockWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// AddToBalance applies a signed delta to the wallet's total balance.
	AddToBalance(ctx context.Context, q DBExecutor, walletID int64, delta decimal.Decimal) error
}
