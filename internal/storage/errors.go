package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no reminder has the requested id.
	ErrNotFound = errors.New("reminder not found")
	// ErrWriteFailed is returned when a reminder could not be persisted or removed.
	ErrWriteFailed = errors.New("reminder store write failed")
)

// WriteError wraps err so that errors.Is(err, ErrWriteFailed) holds while
// keeping the underlying cause inspectable.
func WriteError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWriteFailed, op, err)
}

// NotFound returns an ErrNotFound wrapping the reminder id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
