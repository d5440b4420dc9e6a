package postgres

import (
	"context"
	"fmt"
	"time"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// StakeRepository implements repository.StakeRepository for PostgreSQL.
type StakeRepository struct{}

// NewStakeRepository creates a new StakeRepository.
func NewStakeRepository() repository.StakeRepository {
	return &StakeRepository{}
}

const stakeColumns = `id, issue_id, proposal_id, user_id, created_at, expiration_days`

// CreateStake inserts a new stake. The (user_id, issue_id) unique index backs
// the one-stake-per-issue rule.
func (r *StakeRepository) CreateStake(ctx context.Context, q repository.DBExecutor, stake *domain.StakedProposal) error {
	query := `INSERT INTO staked_proposals (issue_id, proposal_id, user_id, created_at, expiration_days)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		stake.IssueID, stake.ProposalID, stake.UserID, stake.CreatedAt, stake.ExpirationDays,
	).Scan(&stake.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("stake by user %d on issue %d: %w", stake.UserID, stake.IssueID, util.ErrAlreadyStaked)
		}
		return fmt.Errorf("failed to create stake: %w", err)
	}
	return nil
}

// GetStakesByUserID lists the user's stakes, oldest first.
func (r *StakeRepository) GetStakesByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.StakedProposal, error) {
	stakes := []domain.StakedProposal{}
	query := `SELECT ` + stakeColumns + ` FROM staked_proposals WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	if err := q.SelectContext(ctx, &stakes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get stakes for user %d: %w", userID, err)
	}
	return stakes, nil
}

// GetExpiredStakes lists stakes whose validity ended before now.
func (r *StakeRepository) GetExpiredStakes(ctx context.Context, q repository.DBExecutor, now time.Time) ([]domain.StakedProposal, error) {
	stakes := []domain.StakedProposal{}
	query := `SELECT ` + stakeColumns + ` FROM staked_proposals
              WHERE created_at + expiration_days * INTERVAL '1 day' < $1
              ORDER BY user_id ASC, id ASC`
	if err := q.SelectContext(ctx, &stakes, query, now); err != nil {
		return nil, fmt.Errorf("failed to get expired stakes: %w", err)
	}
	return stakes, nil
}

// DeleteStake removes a stake by ID.
func (r *StakeRepository) DeleteStake(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM staked_proposals WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete stake %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after deleting stake %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}
