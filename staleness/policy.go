package staleness

import "time"

// State is the staleness classification of a published artifact.
type State int

const (
	// Fresh artifacts are served as-is with no background action.
	Fresh State = iota

	// Stale artifacts are served synchronously while a background
	// recomputation is scheduled.
	Stale

	// Expired artifacts are eligible for deletion. They may still be served
	// if not yet swept; callers demanding consistency force recomputation.
	Expired
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Policy holds the per-operation staleness durations.
//
// Refresh is the age after which a served artifact triggers background
// recomputation; TTL is the age after which it becomes eligible for cleanup.
// Refresh never exceeds TTL.
type Policy struct {
	TTL     time.Duration
	Refresh time.Duration
}

// NewPolicy validates and builds a policy. Refresh may equal TTL, in which
// case the stale window is empty and artifacts go straight from fresh to
// expired.
func NewPolicy(ttl, refresh time.Duration) (Policy, error) {
	if ttl <= 0 {
		return Policy{}, ErrNonPositiveTTL
	}
	if refresh < 0 {
		refresh = 0
	}
	if refresh > ttl {
		return Policy{}, ErrRefreshExceedsTTL
	}
	return Policy{TTL: ttl, Refresh: refresh}, nil
}

// ParsePolicy builds a policy from compact duration strings.
func ParsePolicy(ttl, refresh string) (Policy, error) {
	t, err := ParseDuration(ttl)
	if err != nil {
		return Policy{}, err
	}
	r, err := ParseDuration(refresh)
	if err != nil {
		return Policy{}, err
	}
	return NewPolicy(t, r)
}

// Classify maps an artifact age to its staleness state.
func (p Policy) Classify(age time.Duration) State {
	switch {
	case age < p.Refresh:
		return Fresh
	case age < p.TTL:
		return Stale
	default:
		return Expired
	}
}

// ClassifyAt classifies an artifact created at created as observed at now.
func (p Policy) ClassifyAt(created, now time.Time) State {
	return p.Classify(now.Sub(created))
}
