// Package shared holds the error taxonomy and constants used across the natillera domain.
package shared

import "errors"

// Core errors surfaced to callers. Typed not-found errors in the domain packages
// match ErrNotFound through errors.Is.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrLoanAlreadySettled   = errors.New("loan already settled")
	ErrInvalidInput         = errors.New("invalid input")
)
