// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrValidationFailed  = errors.New("validation failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyStaked     = errors.New("proposal already staked by user")
	ErrAlreadyVoted      = errors.New("proposal already voted by user")
	ErrDuplicateEntry    = errors.New("duplicate entry")

	ErrUserNotFound            = fmt.Errorf("user %w", ErrNotFound)
	ErrWalletNotFound          = fmt.Errorf("wallet %w", ErrNotFound)
	ErrTransactionTypeNotFound = fmt.Errorf("transaction type %w", ErrNotFound)
	ErrIssueNotFound           = fmt.Errorf("issue %w", ErrNotFound)
	ErrProposalNotFound        = fmt.Errorf("proposal %w", ErrNotFound)
)

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
