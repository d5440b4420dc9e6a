package service

import (
	"math"
	"sort"

	"pnyx/internal/domain"
)

// RankIssues returns a copy of views ordered by total stake count descending,
// older issues first on ties.
func RankIssues(views []domain.IssueView) []domain.IssueView {
	ranked := append([]domain.IssueView(nil), views...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalStakeCount != ranked[j].TotalStakeCount {
			return ranked[i].TotalStakeCount > ranked[j].TotalStakeCount
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	return ranked
}

// RankProposals orders proposals the same way by their stake count.
func RankProposals(views []domain.ProposalView) []domain.ProposalView {
	ranked := append([]domain.ProposalView(nil), views...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].StakeCount != ranked[j].StakeCount {
			return ranked[i].StakeCount > ranked[j].StakeCount
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	return ranked
}

// TopByLimit returns the first limit elements of list.
func TopByLimit[T any](list []T, limit int) []T {
	if limit <= 0 {
		return []T{}
	}
	if limit > len(list) {
		limit = len(list)
	}
	return list[:limit]
}

// TopByPercentage returns the first round(percentage/100 * len) elements.
// percentage >= 100 returns the whole list; NaN selects nothing.
func TopByPercentage[T any](list []T, percentage float64) []T {
	return list[:percentageCutoff(len(list), percentage)]
}

func percentageCutoff(n int, percentage float64) int {
	if math.IsNaN(percentage) || percentage <= 0 {
		return 0
	}
	if percentage >= 100 {
		return n
	}
	cutoff := int(math.Round(percentage / 100 * float64(n)))
	if cutoff > n {
		return n
	}
	return cutoff
}

// MarkTopStakedIssues flags the issues within the percentage cutoff of an
// already ranked list. Issues without active stakes are never flagged.
func MarkTopStakedIssues(ranked []domain.IssueView, percentage float64) {
	cutoff := percentageCutoff(len(ranked), percentage)
	for i := range ranked {
		ranked[i].IsTopStaked = i < cutoff && ranked[i].TotalStakeCount > 0
	}
}

// MarkTopStakedProposals flags the proposals within the percentage cutoff of
// an already ranked list.
func MarkTopStakedProposals(ranked []domain.ProposalView, percentage float64) {
	cutoff := percentageCutoff(len(ranked), percentage)
	for i := range ranked {
		ranked[i].IsTopStaked = i < cutoff && ranked[i].StakeCount > 0
	}
}
