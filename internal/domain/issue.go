package domain

import "time"

// Issue is a topic open for proposals, optionally until a due date.
type Issue struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// NewIssue creates a new Issue instance.
func NewIssue(userID int64, title, description string, dueDate *time.Time) *Issue {
	now := time.Now().UTC()
	return &Issue{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsClosed reports whether the issue's due date has passed at now.
func (i *Issue) IsClosed(now time.Time) bool {
	return i.DueDate != nil && !now.Before(*i.DueDate)
}
