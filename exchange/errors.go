package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned by a buy fill that would overdraw cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientPosition is returned by a sell fill larger than the
	// held quantity.
	ErrInsufficientPosition = errors.New("insufficient position")
)

// ValidationError reports a malformed order. It is always detected before
// any ledger mutation and is never worth retrying.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}

// APIError reports a non-success response from a live exchange.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}
