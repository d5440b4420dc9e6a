package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// ProposalRepository implements repository.ProposalRepository for PostgreSQL.
type ProposalRepository struct{}

// NewProposalRepository creates a new ProposalRepository.
func NewProposalRepository() repository.ProposalRepository {
	return &ProposalRepository{}
}

// CreateProposal inserts a new proposal.
func (r *ProposalRepository) CreateProposal(ctx context.Context, q repository.DBExecutor, proposal *domain.Proposal) error {
	query := `INSERT INTO proposals (issue_id, user_id, title, description, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		proposal.IssueID, proposal.UserID, proposal.Title, proposal.Description, proposal.CreatedAt, proposal.UpdatedAt,
	).Scan(&proposal.ID)
	if err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}
	return nil
}

// GetProposalByID retrieves a proposal by its ID.
func (r *ProposalRepository) GetProposalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Proposal, error) {
	var proposal domain.Proposal
	query := `SELECT id, issue_id, user_id, title, description, created_at, updated_at FROM proposals WHERE id = $1`
	if err := q.GetContext(ctx, &proposal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal by ID %d: %w", id, err)
	}
	return &proposal, nil
}

// ListProposalViews lists an issue's proposals with stake and vote counts,
// oldest first.
func (r *ProposalRepository) ListProposalViews(ctx context.Context, q repository.DBExecutor, issueID int64, now time.Time) ([]domain.ProposalView, error) {
	views := []domain.ProposalView{}
	query := `
		SELECT p.id, p.issue_id, p.user_id, p.title, p.description, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM staked_proposals s
		         WHERE s.proposal_id = p.id AND ` + activeStake + `) AS stake_count,
		       (SELECT COUNT(*) FROM votes v WHERE v.proposal_id = p.id) AS vote_count
		FROM proposals p
		WHERE p.issue_id = $2
		ORDER BY p.created_at ASC, p.id ASC`
	if err := q.SelectContext(ctx, &views, query, now, issueID); err != nil {
		return nil, fmt.Errorf("failed to list proposals for issue %d: %w", issueID, err)
	}
	return views, nil
}
