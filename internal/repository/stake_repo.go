package repository

import (
	"context"
	"time"

	"pnyx/internal/domain"
)

// StakeRepository defines the interface for staked proposal records.
type StakeRepository interface {
	// CreateStake persists a new stake. A second stake by the same user on
	// the same issue yields util.ErrAlreadyStaked.
	CreateStake(ctx context.Context, q DBExecutor, stake *domain.StakedProposal) error
	// GetStakesByUserID lists the user's stake records, oldest first.
	GetStakesByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.StakedProposal, error)
	// GetExpiredStakes lists stakes whose window closed before now, ordered by
	// user then id so concurrent sweeps lock wallets in the same order.
	GetExpiredStakes(ctx context.Context, q DBExecutor, now time.Time) ([]domain.StakedProposal, error)
	// DeleteStake removes a stake and reports whether a row was removed.
	DeleteStake(ctx context.Context, q DBExecutor, id int64) (bool, error)
}
