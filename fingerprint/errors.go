package fingerprint

import "errors"

// Sentinel errors for fingerprint derivation.
var (
	// ErrEmptyOp is returned when the operation identity is empty.
	ErrEmptyOp = errors.New("fingerprint: operation identity is empty")

	// ErrInvalidEnvName is returned when an environment variable name is not
	// a legal identifier. Rejecting metacharacter-bearing names is an
	// injection defense, not an arbitrary restriction.
	ErrInvalidEnvName = errors.New("fingerprint: invalid environment variable name")
)
