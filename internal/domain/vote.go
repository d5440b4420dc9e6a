package domain

import "time"

// Vote records one user's vote for a proposal.
type Vote struct {
	ID         int64     `db:"id" json:"id"`
	ProposalID int64     `db:"proposal_id" json:"proposal_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewVote creates a new Vote instance.
func NewVote(proposalID, userID int64) *Vote {
	return &Vote{
		ProposalID: proposalID,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	}
}
