package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper rolls back expired stakes on a fixed interval, bounding how long an
// expired stake can keep counting.
type Sweeper struct {
	staking  StakingService
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper running every interval.
func NewSweeper(staking StakingService, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{staking: staking, interval: interval, logger: logger}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// Sweep failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stake sweeper stopped")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.staking.RollbackInvalidStakedProposals(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Stake sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("Stake sweep finished", "rolled_back", n)
	}
}
