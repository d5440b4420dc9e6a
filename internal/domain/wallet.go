// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the running balance of one user. TotalBalance is maintained
// incrementally as transactions are appended, never recomputed.
type Wallet struct {
	ID           int64           `db:"id" json:"id"`
	UserID       int64           `db:"user_id" json:"user_id"`
	TotalBalance decimal.Decimal `db:"total_balance" json:"total_balance"` // NUMERIC(20, 4) in DB
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates an empty wallet for the user.
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:       userID,
		TotalBalance: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
