package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pnyx/internal/cache"
	"pnyx/internal/domain"
	"pnyx/internal/metrics"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// IssueService covers issues, their proposals, votes, and the ranking queries.
type IssueService interface {
	CreateIssue(ctx context.Context, userID int64, title, description string, dueDate *time.Time) (*domain.Issue, error)
	GetIssue(ctx context.Context, issueID int64) (*domain.IssueView, error)
	// ListIssues returns every issue ranked by stakes with the top-staked share flagged.
	ListIssues(ctx context.Context) ([]domain.IssueView, error)
	GetTopStakedIssues(ctx context.Context, limit int) ([]domain.IssueView, error)
	GetTopStakedIssuesPercentage(ctx context.Context, percentage float64) ([]domain.IssueView, error)

	CreateProposal(ctx context.Context, issueID, userID int64, title, description string) (*domain.Proposal, error)
	ListProposals(ctx context.Context, issueID int64) ([]domain.ProposalView, error)
	GetTopStakedProposals(ctx context.Context, issueID int64, limit int) ([]domain.ProposalView, error)

	CastVote(ctx context.Context, proposalID, userID int64) (*domain.Vote, error)
}

// IssueDeps collects the collaborators of the issue service.
type IssueDeps struct {
	UnitOfWork   *UnitOfWork
	DBExecutor   repository.DBExecutor
	Ledger       LedgerService
	UserRepo     repository.UserRepository
	IssueRepo    repository.IssueRepository
	ProposalRepo repository.ProposalRepository
	VoteRepo     repository.VoteRepository
	Cache        cache.RankingCache
	Metrics      metrics.Recorder
	Validator    *ValidationHelper
	Logger       *slog.Logger
	Now          func() time.Time
}

// IssueSettings holds the ranking cutoffs and due date bound.
type IssueSettings struct {
	TopStakedIssuesPercent    float64
	TopStakedProposalsPercent float64
	MaxDueDays                int
}

type issueService struct {
	IssueDeps
	settings IssueSettings
}

// NewIssueService creates a new IssueService.
func NewIssueService(deps IssueDeps, settings IssueSettings) IssueService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Validator == nil {
		deps.Validator = NewValidationHelper()
	}
	return &issueService{IssueDeps: deps, settings: settings}
}

type issueInput struct {
	Title       string `json:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"required,min=10"`
}

type proposalInput struct {
	Title       string `json:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"required,min=10"`
}

func (s *issueService) validateDueDate(dueDate *time.Time, now time.Time) error {
	if dueDate == nil {
		return nil
	}
	if !dueDate.After(now) {
		return util.NewValidationError("due_date", "must be in the future")
	}
	if dueDate.After(now.AddDate(0, 0, s.settings.MaxDueDays)) {
		return util.NewValidationError("due_date", fmt.Sprintf("must be within %d days", s.settings.MaxDueDays))
	}
	return nil
}

// CreateIssue validates and stores the issue and charges the AddIssue fee.
func (s *issueService) CreateIssue(ctx context.Context, userID int64, title, description string, dueDate *time.Time) (*domain.Issue, error) {
	if err := s.Validator.ValidateStruct(issueInput{Title: title, Description: description}); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	if err := s.validateDueDate(dueDate, s.Now()); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	if dueDate != nil {
		utc := dueDate.UTC()
		dueDate = &utc
	}

	issue := domain.NewIssue(userID, title, description, dueDate)
	err := s.UnitOfWork.Do(ctx, "create issue", func(q repository.DBExecutor) error {
		if _, err := s.UserRepo.GetUserByID(ctx, q, userID); err != nil {
			return err
		}
		if err := s.IssueRepo.CreateIssue(ctx, q, issue); err != nil {
			return err
		}
		_, err := s.Ledger.AddTransaction(ctx, q, userID, domain.TransactionTypeAddIssue, &issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.WalletTransaction(string(domain.TransactionTypeAddIssue))
	s.invalidateRankings(ctx)
	s.Logger.Info("Issue created", "issue_id", issue.ID, "user_id", userID)
	return issue, nil
}

func (s *issueService) rankedIssues(ctx context.Context) ([]domain.IssueView, error) {
	views, err := s.IssueRepo.ListIssueViews(ctx, s.DBExecutor, s.Now())
	if err != nil {
		return nil, err
	}
	ranked := RankIssues(views)
	MarkTopStakedIssues(ranked, s.settings.TopStakedIssuesPercent)
	return ranked, nil
}

func (s *issueService) GetIssue(ctx context.Context, issueID int64) (*domain.IssueView, error) {
	ranked, err := s.rankedIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	for i := range ranked {
		if ranked[i].ID == issueID {
			return &ranked[i], nil
		}
	}
	return nil, fmt.Errorf("get issue %d: %w", issueID, util.ErrIssueNotFound)
}

func (s *issueService) ListIssues(ctx context.Context) ([]domain.IssueView, error) {
	ranked, err := s.rankedIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return ranked, nil
}

func (s *issueService) GetTopStakedIssues(ctx context.Context, limit int) ([]domain.IssueView, error) {
	key := "issues:limit:" + strconv.Itoa(limit)
	return cached(ctx, s, key, func() ([]domain.IssueView, error) {
		ranked, err := s.rankedIssues(ctx)
		if err != nil {
			return nil, fmt.Errorf("top staked issues: %w", err)
		}
		return TopByLimit(ranked, limit), nil
	})
}

func (s *issueService) GetTopStakedIssuesPercentage(ctx context.Context, percentage float64) ([]domain.IssueView, error) {
	key := "issues:percent:" + strconv.FormatFloat(percentage, 'f', -1, 64)
	return cached(ctx, s, key, func() ([]domain.IssueView, error) {
		ranked, err := s.rankedIssues(ctx)
		if err != nil {
			return nil, fmt.Errorf("top staked issues: %w", err)
		}
		return TopByPercentage(ranked, percentage), nil
	})
}

// CreateProposal stores a proposal on an open issue and charges the
// AddProposal fee.
func (s *issueService) CreateProposal(ctx context.Context, issueID, userID int64, title, description string) (*domain.Proposal, error) {
	if err := s.Validator.ValidateStruct(proposalInput{Title: title, Description: description}); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	proposal := domain.NewProposal(issueID, userID, title, description)
	err := s.UnitOfWork.Do(ctx, "create proposal", func(q repository.DBExecutor) error {
		issue, err := s.IssueRepo.GetIssueByID(ctx, q, issueID)
		if err != nil {
			return err
		}
		if issue.IsClosed(s.Now()) {
			return util.NewValidationError("issue_id", "issue is past its due date")
		}
		if _, err := s.UserRepo.GetUserByID(ctx, q, userID); err != nil {
			return err
		}
		if err := s.ProposalRepo.CreateProposal(ctx, q, proposal); err != nil {
			return err
		}
		_, err = s.Ledger.AddTransaction(ctx, q, userID, domain.TransactionTypeAddProposal, &proposal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.WalletTransaction(string(domain.TransactionTypeAddProposal))
	s.invalidateRankings(ctx)
	s.Logger.Info("Proposal created", "proposal_id", proposal.ID, "issue_id", issueID, "user_id", userID)
	return proposal, nil
}

func (s *issueService) rankedProposals(ctx context.Context, issueID int64) ([]domain.ProposalView, error) {
	if _, err := s.IssueRepo.GetIssueByID(ctx, s.DBExecutor, issueID); err != nil {
		return nil, err
	}
	views, err := s.ProposalRepo.ListProposalViews(ctx, s.DBExecutor, issueID, s.Now())
	if err != nil {
		return nil, err
	}
	ranked := RankProposals(views)
	MarkTopStakedProposals(ranked, s.settings.TopStakedProposalsPercent)
	return ranked, nil
}

func (s *issueService) ListProposals(ctx context.Context, issueID int64) ([]domain.ProposalView, error) {
	ranked, err := s.rankedProposals(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return ranked, nil
}

func (s *issueService) GetTopStakedProposals(ctx context.Context, issueID int64, limit int) ([]domain.ProposalView, error) {
	key := fmt.Sprintf("proposals:%d:limit:%d", issueID, limit)
	return cached(ctx, s, key, func() ([]domain.ProposalView, error) {
		ranked, err := s.rankedProposals(ctx, issueID)
		if err != nil {
			return nil, fmt.Errorf("top staked proposals: %w", err)
		}
		return TopByLimit(ranked, limit), nil
	})
}

// CastVote records the user's vote; each user votes once per proposal.
func (s *issueService) CastVote(ctx context.Context, proposalID, userID int64) (*domain.Vote, error) {
	vote := domain.NewVote(proposalID, userID)
	err := s.UnitOfWork.Do(ctx, "cast vote", func(q repository.DBExecutor) error {
		if _, err := s.ProposalRepo.GetProposalByID(ctx, q, proposalID); err != nil {
			return err
		}
		if _, err := s.UserRepo.GetUserByID(ctx, q, userID); err != nil {
			return err
		}
		if err := s.VoteRepo.CreateVote(ctx, q, vote); err != nil {
			if util.IsError(err, util.ErrDuplicateEntry) {
				return fmt.Errorf("user %d on proposal %d: %w", userID, proposalID, util.ErrAlreadyVoted)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRankings(ctx)
	return vote, nil
}

func (s *issueService) invalidateRankings(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Logger.Warn("Failed to invalidate ranking cache", "error", err)
	}
}

// cached serves key from the ranking cache, loading and storing it on a miss.
// Cache errors are logged and never fail the query.
func cached[T any](ctx context.Context, s *issueService, key string, load func() (T, error)) (T, error) {
	var value T
	found, err := s.Cache.Get(ctx, key, &value)
	if err != nil {
		s.Logger.Warn("Ranking cache read failed", "key", key, "error", err)
	}
	if found {
		return value, nil
	}

	value, err = load()
	if err != nil {
		return value, err
	}
	if err := s.Cache.Set(ctx, key, value); err != nil {
		s.Logger.Warn("Ranking cache write failed", "key", key, "error", err)
	}
	return value, nil
}
