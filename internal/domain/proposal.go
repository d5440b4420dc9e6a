package domain

import "time"

// Proposal is a competing answer to an issue.
type Proposal struct {
	ID          int64     `db:"id" json:"id"`
	IssueID     int64     `db:"issue_id" json:"issue_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// NewProposal creates a new Proposal instance.
func NewProposal(issueID, userID int64, title, description string) *Proposal {
	now := time.Now().UTC()
	return &Proposal{
		IssueID:     issueID,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
