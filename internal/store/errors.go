package store

import "errors"

// Sentinel errors returned by every Store implementation. Services translate
// them into domain errors; callers compare with errors.Is.
var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists means a UNIQUE constraint rejected the write.
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStaleState means a conditional update matched no row because the
	// record left the expected state (usually a concurrent writer won).
	ErrStaleState = errors.New("store: stale state")
)
