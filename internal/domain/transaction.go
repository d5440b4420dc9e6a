// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionTypeName names one entry of the fee schedule.
type TransactionTypeName string

const (
	TransactionTypeGenesis               TransactionTypeName = "Genesis"
	TransactionTypeAddIssue              TransactionTypeName = "AddIssue"
	TransactionTypeAddProposal           TransactionTypeName = "AddProposal"
	TransactionTypeStakeProposal         TransactionTypeName = "StakeProposal"
	TransactionTypeStakeProposalRollback TransactionTypeName = "StakeProposalRollback"
)

// TransactionTypeNames lists the closed set of fee schedule entries.
var TransactionTypeNames = []TransactionTypeName{
	TransactionTypeGenesis,
	TransactionTypeAddIssue,
	TransactionTypeAddProposal,
	TransactionTypeStakeProposal,
	TransactionTypeStakeProposalRollback,
}

// Valid reports whether n belongs to the fee schedule.
func (n TransactionTypeName) Valid() bool {
	for _, name := range TransactionTypeNames {
		if n == name {
			return true
		}
	}
	return false
}

// TransactionType is a named fee. A negative fee debits the wallet, a
// positive one credits it.
type TransactionType struct {
	ID   int64               `db:"id" json:"id"`
	Name TransactionTypeName `db:"name" json:"name"`
	Fee  decimal.Decimal     `db:"fee" json:"fee"`
}

// WalletTransaction is an immutable signed balance adjustment.
type WalletTransaction struct {
	ID                int64               `db:"id" json:"id"`
	WalletID          int64               `db:"wallet_id" json:"wallet_id"`
	TransactionTypeID int64               `db:"transaction_type_id" json:"transaction_type_id"`
	TransactionType   TransactionTypeName `db:"transaction_type" json:"transaction_type"` // joined from transaction_types on read
	Balance           decimal.Decimal     `db:"balance" json:"balance"`                   // signed delta
	TransactionID     *int64              `db:"transaction_id" json:"transaction_id"`     // business object that caused it, e.g. a stake id
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
}

// NewWalletTransaction creates a transaction applying txType's fee to the wallet.
func NewWalletTransaction(walletID int64, txType *TransactionType, correlationID *int64) *WalletTransaction {
	return &WalletTransaction{
		WalletID:          walletID,
		TransactionTypeID: txType.ID,
		TransactionType:   txType.Name,
		Balance:           txType.Fee,
		TransactionID:     correlationID,
		CreatedAt:         time.Now().UTC(),
	}
}
