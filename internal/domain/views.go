package domain

// ProposalView is a proposal with its read-time aggregates. Views are built by
// queries and never persisted.
type ProposalView struct {
	Proposal
	StakeCount  int64 `db:"stake_count" json:"stake_count"`
	VoteCount   int64 `db:"vote_count" json:"vote_count"`
	IsTopStaked bool  `db:"-" json:"is_top_staked"`
}

// IssueView is an issue with the totals of its proposals.
type IssueView struct {
	Issue
	TotalStakeCount int64 `db:"total_stake_count" json:"total_stake_count"`
	TotalVoteCount  int64 `db:"total_vote_count" json:"total_vote_count"`
	IsTopStaked     bool  `db:"-" json:"is_top_staked"`
}
