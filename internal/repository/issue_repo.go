package repository

import (
	"context"
	"time"

	"pnyx/internal/domain"
)

// IssueRepository defines the interface for issue data operations.
// Aggregated views count only stakes still valid at now.
type IssueRepository interface {
	CreateIssue(ctx context.Context, q DBExecutor, issue *domain.Issue) error
	GetIssueByID(ctx context.Context, q DBExecutor, id int64) (*domain.Issue, error)
	ListIssueViews(ctx context.Context, q DBExecutor, now time.Time) ([]domain.IssueView, error)
}

// ProposalRepository defines the interface for proposal data operations.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, q DBExecutor, proposal *domain.Proposal) error
	GetProposalByID(ctx context.Context, q DBExecutor, id int64) (*domain.Proposal, error)
	ListProposalViews(ctx context.Context, q DBExecutor, issueID int64, now time.Time) ([]domain.ProposalView, error)
}

// VoteRepository defines the interface for vote data operations.
type VoteRepository interface {
	// CreateVote records a vote. A second vote by the same user on the same
	// proposal yields util.ErrDuplicateEntry.
	CreateVote(ctx context.Context, q DBExecutor, vote *domain.Vote) error
}
