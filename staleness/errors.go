package staleness

import "errors"

// Sentinel errors for policy configuration.
var (
	// ErrInvalidDuration is returned for malformed compact duration syntax.
	ErrInvalidDuration = errors.New("staleness: invalid duration")

	// ErrNonPositiveTTL is returned when a policy TTL is zero or negative.
	ErrNonPositiveTTL = errors.New("staleness: TTL must be positive")

	// ErrRefreshExceedsTTL is returned when refresh > TTL.
	ErrRefreshExceedsTTL = errors.New("staleness: refresh window exceeds TTL")
)
