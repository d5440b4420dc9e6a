package types

import (
	"time"

	"pnyx/internal/domain"
)

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// UserResponse is returned on registration.
type UserResponse struct {
	User   domain.User   `json:"user"`
	Wallet domain.Wallet `json:"wallet"`
}

// StakeResponse is a stake with its computed expiry.
type StakeResponse struct {
	domain.StakedProposal
	ValidTill time.Time `json:"valid_till"`
}

func NewStakeResponse(stake *domain.StakedProposal) StakeResponse {
	return StakeResponse{StakedProposal: *stake, ValidTill: stake.ValidTill()}
}
