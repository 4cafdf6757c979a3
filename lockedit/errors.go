package lockedit

import "github.com/pkg/errors"

var (
	// ErrConflict is returned when an edit or a new lock would intersect an existing lock region
	// without being addressed to it by name.
	ErrConflict = errors.New("Failed to set the lock due to non-empty intersection with existing lock")

	// ErrNotFound is returned when a lock name is not registered.
	ErrNotFound = errors.New("lock not found")

	// ErrMalformedMarker is returned when loaded text holds nested, unterminated, stray or malformed
	// sentinel markers.
	ErrMalformedMarker = errors.New("malformed lock markers")
)
