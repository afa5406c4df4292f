package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrUnavailable indicates the data store could not be reached in time.
	// Callers own any retry policy; repositories never retry.
	ErrUnavailable = errors.New("data store unavailable")
)
