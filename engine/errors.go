package engine

import "errors"

// Sentinel errors for engine configuration. All are reported synchronously
// at wrap time; no partial state is installed on failure.
var (
	// ErrNilRunner is returned when a nil operation is wrapped.
	ErrNilRunner = errors.New("engine: runner is nil")

	// ErrEmptyName is returned when the operation identity is empty.
	ErrEmptyName = errors.New("engine: operation name is empty")
)
