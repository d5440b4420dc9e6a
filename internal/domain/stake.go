package domain

import "time"

// StakedProposal is one user's active stake on one proposal of an issue.
// A user holds at most one per issue.
type StakedProposal struct {
	ID             int64     `db:"id" json:"id"`
	IssueID        int64     `db:"issue_id" json:"issue_id"`
	ProposalID     int64     `db:"proposal_id" json:"proposal_id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	ExpirationDays int       `db:"expiration_days" json:"expiration_days"`
}

// NewStakedProposal creates a stake created at now.
func NewStakedProposal(issueID, proposalID, userID int64, expirationDays int, now time.Time) *StakedProposal {
	return &StakedProposal{
		IssueID:        issueID,
		ProposalID:     proposalID,
		UserID:         userID,
		CreatedAt:      now.UTC(),
		ExpirationDays: expirationDays,
	}
}

// ValidTill is CreatedAt plus the expiration window.
func (s *StakedProposal) ValidTill() time.Time {
	return s.CreatedAt.AddDate(0, 0, s.ExpirationDays)
}

// IsExpired reports whether the stake's window closed before now.
func (s *StakedProposal) IsExpired(now time.Time) bool {
	return s.ValidTill().Before(now)
}
