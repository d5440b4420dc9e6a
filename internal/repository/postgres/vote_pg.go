package postgres

import (
	"context"
	"fmt"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// VoteRepository implements repository.VoteRepository for PostgreSQL.
type VoteRepository struct{}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository() repository.VoteRepository {
	return &VoteRepository{}
}

// CreateVote inserts a vote; (user_id, proposal_id) is unique.
func (r *VoteRepository) CreateVote(ctx context.Context, q repository.DBExecutor, vote *domain.Vote) error {
	query := `INSERT INTO votes (proposal_id, user_id, created_at) VALUES ($1, $2, $3) RETURNING id`
	err := q.QueryRowContext(ctx, query, vote.ProposalID, vote.UserID, vote.CreatedAt).Scan(&vote.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("vote by user %d on proposal %d: %w", vote.UserID, vote.ProposalID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}
