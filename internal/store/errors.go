package store

import "errors"

// Operation errors surfaced to the caller boundary. All are
// recoverable; none leaves the store in a partially mutated state.
var (
	// ErrInvalidCategory means a category name outside the configured
	// vocabulary was passed to an operation.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrNotFound means no row in the source category matched the given
	// key or supplier criteria.
	ErrNotFound = errors.New("row not found")

	// ErrEmptyResultSet means a mutating operation ran before any
	// processing run completed. Distinct from ErrNotFound so callers can
	// tell "nothing processed yet" from "this row is gone".
	ErrEmptyResultSet = errors.New("no processing result available")
)
