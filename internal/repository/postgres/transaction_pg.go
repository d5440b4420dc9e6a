// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new wallet transaction.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (wallet_id, transaction_type_id, balance, transaction_id, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.TransactionTypeID,
		transaction.Balance,
		transaction.TransactionID,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	return nil
}

// GetTransactionsByWalletID retrieves a page of the wallet's transactions and
// the total count in two queries.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	transactions := []domain.WalletTransaction{}

	query := `
		SELECT wt.id, wt.wallet_id, wt.transaction_type_id, tt.name AS transaction_type,
		       wt.balance, wt.transaction_id, wt.created_at
		FROM wallet_transactions wt
		JOIN transaction_types tt ON tt.id = wt.transaction_type_id
		WHERE wt.wallet_id = $1
		ORDER BY wt.created_at DESC, wt.id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, walletID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %d: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

// GetTransactionTypeByName resolves a fee schedule entry by name.
func (r *TransactionRepository) GetTransactionTypeByName(ctx context.Context, q repository.DBExecutor, name domain.TransactionTypeName) (*domain.TransactionType, error) {
	var txType domain.TransactionType
	query := `SELECT id, name, fee FROM transaction_types WHERE name = $1`
	if err := q.GetContext(ctx, &txType, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, util.ErrTransactionTypeNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction type %s: %w", name, err)
	}
	return &txType, nil
}

// EnsureTransactionType registers a fee schedule entry unless one with the
// same name exists; an existing fee is left untouched.
func (r *TransactionRepository) EnsureTransactionType(ctx context.Context, q repository.DBExecutor, name domain.TransactionTypeName, fee decimal.Decimal) error {
	query := `INSERT INTO transaction_types (name, fee) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, name, fee); err != nil {
		return fmt.Errorf("failed to seed transaction type %s: %w", name, err)
	}
	return nil
}
