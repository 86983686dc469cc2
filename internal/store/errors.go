package store

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers branch with errors.Is; messages stay human-readable.
var (
	// ErrValidation marks rejected input: empty excerpt or annotation,
	// missing user identity on a write path, bad enum values.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a failed store call. The note-creation path aborts
	// on it without partial writes.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound marks a referenced blog, article, or note that does not
	// exist for the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration marks a missing precondition outside the data itself,
	// such as ranking without a saved profile.
	ErrConfiguration = errors.New("configuration missing")
)

// wrapPersistence tags a driver error so callers can branch on ErrPersistence
// while keeping the original cause in the chain.
func wrapPersistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
