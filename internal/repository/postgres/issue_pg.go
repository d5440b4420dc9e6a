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

// activeStake matches staked_proposals rows (aliased s) still valid at $1.
const activeStake = `s.created_at + s.expiration_days * INTERVAL '1 day' >= $1`

// IssueRepository implements repository.IssueRepository for PostgreSQL.
type IssueRepository struct{}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository() repository.IssueRepository {
	return &IssueRepository{}
}

const issueViewSelect = `
		SELECT i.id, i.user_id, i.title, i.description, i.due_date, i.created_at, i.updated_at,
		       (SELECT COUNT(*) FROM staked_proposals s
		         WHERE s.issue_id = i.id AND ` + activeStake + `) AS total_stake_count,
		       (SELECT COUNT(*) FROM votes v JOIN proposals p ON p.id = v.proposal_id
		         WHERE p.issue_id = i.id) AS total_vote_count
		FROM issues i`

// CreateIssue inserts a new issue.
func (r *IssueRepository) CreateIssue(ctx context.Context, q repository.DBExecutor, issue *domain.Issue) error {
	query := `INSERT INTO issues (user_id, title, description, due_date, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		issue.UserID, issue.Title, issue.Description, issue.DueDate, issue.CreatedAt, issue.UpdatedAt,
	).Scan(&issue.ID)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

// GetIssueByID retrieves an issue by its ID.
func (r *IssueRepository) GetIssueByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Issue, error) {
	var issue domain.Issue
	query := `SELECT id, user_id, title, description, due_date, created_at, updated_at FROM issues WHERE id = $1`
	if err := q.GetContext(ctx, &issue, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue by ID %d: %w", id, err)
	}
	return &issue, nil
}

// ListIssueViews lists all issues with totals, oldest first.
func (r *IssueRepository) ListIssueViews(ctx context.Context, q repository.DBExecutor, now time.Time) ([]domain.IssueView, error) {
	views := []domain.IssueView{}
	if err := q.SelectContext(ctx, &views, issueViewSelect+` ORDER BY i.created_at ASC, i.id ASC`, now); err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return views, nil
}
