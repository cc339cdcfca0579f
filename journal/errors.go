package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports a missing or malformed input field.
	ErrValidation = errors.New("validation error")
	// ErrNotFound reports an id that does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps failures of the underlying database engine.
	ErrStorage = errors.New("storage error")
	// ErrNotInitialized is returned when a store is used before Open or after Close.
	ErrNotInitialized = errors.New("store not initialized")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// storageError wraps a driver error. Errors that already carry one of the
// package sentinels are returned as-is.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStorage) || errors.Is(err, ErrNotInitialized) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
