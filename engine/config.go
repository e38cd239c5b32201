package engine

import (
	"github.com/jonwraymond/runcache/staleness"
)

// WrapConfig is the per-operation configuration supplied at wrap time.
type WrapConfig struct {
	// Name is the operation identity. It distinguishes cache entries of
	// different operations that happen to share arguments.
	Name string

	// TTL is the artifact lifetime in compact duration syntax ("60s",
	// "1h30m", "2d"). Required.
	TTL string

	// Refresh is the age after which a served artifact triggers background
	// recomputation. Empty means no stale window: artifacts stay fresh
	// until they expire. Must not exceed TTL.
	Refresh string

	// EnvNames lists environment variables folded into the cache key. Each
	// must be a syntactically legal identifier; metacharacter-bearing names
	// are rejected outright.
	EnvNames []string

	// Mutex serializes cache-miss recomputation for this operation across
	// processes via an advisory file lock.
	Mutex bool
}

// policy parses and validates the duration configuration.
func (c WrapConfig) policy() (staleness.Policy, error) {
	ttl, err := staleness.ParseDuration(c.TTL)
	if err != nil {
		return staleness.Policy{}, err
	}
	refresh := ttl
	if c.Refresh != "" {
		refresh, err = staleness.ParseDuration(c.Refresh)
		if err != nil {
			return staleness.Policy{}, err
		}
	}
	return staleness.NewPolicy(ttl, refresh)
}
