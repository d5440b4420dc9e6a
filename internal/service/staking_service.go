package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pnyx/internal/cache"
	"pnyx/internal/domain"
	"pnyx/internal/metrics"
	"pnyx/internal/repository"
	"pnyx/internal/util"
)

// StakingService manages users' stakes on proposals.
type StakingService interface {
	// Stake puts the user's stake on proposalID of issueID, rolling back a
	// stake the user holds on another proposal of the same issue.
	Stake(ctx context.Context, issueID, proposalID, userID int64) (*domain.StakedProposal, error)
	// StakeProposal resolves the proposal's issue and stakes on it.
	StakeProposal(ctx context.Context, proposalID, userID int64) (*domain.StakedProposal, error)
	// RollbackInvalidStakedProposals credits back and removes every expired
	// stake, returning how many were rolled back.
	RollbackInvalidStakedProposals(ctx context.Context) (int, error)
	GetActiveStakes(ctx context.Context, userID int64) ([]domain.StakedProposal, error)
}

// StakingDeps collects the collaborators of the staking service.
type StakingDeps struct {
	UnitOfWork   *UnitOfWork
	DBExecutor   repository.DBExecutor
	Ledger       LedgerService
	UserRepo     repository.UserRepository
	WalletRepo   repository.WalletRepository
	ProposalRepo repository.ProposalRepository
	StakeRepo    repository.StakeRepository
	Cache        cache.RankingCache
	Metrics      metrics.Recorder
	Logger       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type stakingService struct {
	StakingDeps
	expirationDays int
}

// NewStakingService creates a StakingService whose stakes last expirationDays.
func NewStakingService(deps StakingDeps, expirationDays int) StakingService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &stakingService{StakingDeps: deps, expirationDays: expirationDays}
}

func (s *stakingService) StakeProposal(ctx context.Context, proposalID, userID int64) (*domain.StakedProposal, error) {
	proposal, err := s.ProposalRepo.GetProposalByID(ctx, s.DBExecutor, proposalID)
	if err != nil {
		return nil, fmt.Errorf("stake: %w", err)
	}
	return s.Stake(ctx, proposal.IssueID, proposalID, userID)
}

func (s *stakingService) Stake(ctx context.Context, issueID, proposalID, userID int64) (*domain.StakedProposal, error) {
	// Expired stakes are settled first so the funding check sees current balances.
	if _, err := s.RollbackInvalidStakedProposals(ctx); err != nil {
		return nil, fmt.Errorf("stake: %w", err)
	}

	var (
		stake            *domain.StakedProposal
		superseded       *domain.StakedProposal
		supersededReason string
	)
	err := s.UnitOfWork.Do(ctx, "stake", func(q repository.DBExecutor) error {
		proposal, err := s.ProposalRepo.GetProposalByID(ctx, q, proposalID)
		if err != nil {
			return err
		}
		if proposal.IssueID != issueID {
			return fmt.Errorf("proposal %d does not belong to issue %d: %w", proposalID, issueID, util.ErrProposalNotFound)
		}
		if _, err := s.UserRepo.GetUserByID(ctx, q, userID); err != nil {
			return err
		}

		// The wallet lock serialises stake operations of one user.
		if _, err := s.WalletRepo.LockWalletByUserID(ctx, q, userID); err != nil {
			return err
		}

		stakes, err := s.StakeRepo.GetStakesByUserID(ctx, q, userID)
		if err != nil {
			return err
		}
		now := s.Now()
		for i := range stakes {
			existing := stakes[i]
			if existing.IssueID != issueID {
				continue
			}
			if existing.ProposalID == proposalID && !existing.IsExpired(now) {
				return fmt.Errorf("user %d on proposal %d: %w", userID, proposalID, util.ErrAlreadyStaked)
			}
			rolledBack, err := s.rollbackStake(ctx, q, &existing)
			if err != nil {
				return err
			}
			if rolledBack {
				superseded = &existing
				supersededReason = metrics.ReasonSuperseded
				if existing.IsExpired(now) {
					supersededReason = metrics.ReasonExpired
				}
			}
		}

		stake = domain.NewStakedProposal(issueID, proposalID, userID, s.expirationDays, now)
		if err := s.StakeRepo.CreateStake(ctx, q, stake); err != nil {
			return err
		}
		_, err = s.Ledger.AddTransaction(ctx, q, userID, domain.TransactionTypeStakeProposal, &stake.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if superseded != nil {
		s.Metrics.StakeRolledBack(supersededReason)
		s.Metrics.WalletTransaction(string(domain.TransactionTypeStakeProposalRollback))
		s.Logger.Info("Stake superseded", "stake_id", superseded.ID, "user_id", userID, "issue_id", issueID,
			"old_proposal_id", superseded.ProposalID, "new_proposal_id", proposalID)
	}
	s.Metrics.StakeCreated()
	s.Metrics.WalletTransaction(string(domain.TransactionTypeStakeProposal))
	s.invalidateRankings(ctx)
	s.Logger.Info("Proposal staked", "stake_id", stake.ID, "user_id", userID, "issue_id", issueID, "proposal_id", proposalID)

	return stake, nil
}

// rollbackStake removes the stake and credits the rollback fee, correlated to
// the stake's id. It reports false when the stake was already gone.
func (s *stakingService) rollbackStake(ctx context.Context, q repository.DBExecutor, stake *domain.StakedProposal) (bool, error) {
	deleted, err := s.StakeRepo.DeleteStake(ctx, q, stake.ID)
	if err != nil || !deleted {
		return false, err
	}
	if _, err := s.Ledger.AddTransaction(ctx, q, stake.UserID, domain.TransactionTypeStakeProposalRollback, &stake.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *stakingService) RollbackInvalidStakedProposals(ctx context.Context) (int, error) {
	start := time.Now()
	rolledBack := 0

	err := s.UnitOfWork.Do(ctx, "rollback expired stakes", func(q repository.DBExecutor) error {
		rolledBack = 0
		expired, err := s.StakeRepo.GetExpiredStakes(ctx, q, s.Now())
		if err != nil {
			return err
		}
		for i := range expired {
			stake := expired[i]
			// Wallet before stake row, the same lock order Stake uses.
			if _, err := s.WalletRepo.LockWalletByUserID(ctx, q, stake.UserID); err != nil {
				return err
			}
			ok, err := s.rollbackStake(ctx, q, &stake)
			if err != nil {
				return err
			}
			if ok {
				rolledBack++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if rolledBack > 0 {
		for range rolledBack {
			s.Metrics.StakeRolledBack(metrics.ReasonExpired)
			s.Metrics.WalletTransaction(string(domain.TransactionTypeStakeProposalRollback))
		}
		s.invalidateRankings(ctx)
		s.Logger.Info("Expired stakes rolled back", "count", rolledBack)
	}
	s.Metrics.SweepCompleted(rolledBack, time.Since(start))
	return rolledBack, nil
}

func (s *stakingService) GetActiveStakes(ctx context.Context, userID int64) ([]domain.StakedProposal, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, s.DBExecutor, userID); err != nil {
		return nil, fmt.Errorf("active stakes: %w", err)
	}
	stakes, err := s.StakeRepo.GetStakesByUserID(ctx, s.DBExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("active stakes: %w", err)
	}

	now := s.Now()
	active := make([]domain.StakedProposal, 0, len(stakes))
	for _, stake := range stakes {
		if !stake.IsExpired(now) {
			active = append(active, stake)
		}
	}
	return active, nil
}

func (s *stakingService) invalidateRankings(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Logger.Warn("Failed to invalidate ranking cache", "error", err)
	}
}
