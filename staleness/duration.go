package staleness

import (
	"fmt"
	"time"
)

// ParseDuration parses the compact duration syntax used for per-operation
// TTL and refresh configuration: an integer count followed by one of the
// unit suffixes "s", "m", "h", or "d", optionally repeated ("90s", "1h30m",
// "2d12h").
//
// The parser is deliberately strict: no digits, an unknown suffix, a missing
// suffix, or trailing garbage all fail rather than silently truncating the
// value. time.ParseDuration is not used because it lacks days and accepts
// fractional and sub-second forms this configuration syntax does not.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	var total time.Duration
	i := 0
	for i < len(s) {
		start := i
		var n int64
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			digit := int64(s[i] - '0')
			if n > (1<<62)/10 {
				return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, s)
			}
			n = n*10 + digit
			i++
		}
		if i == start {
			return 0, fmt.Errorf("%w: %q: expected digits at position %d", ErrInvalidDuration, s, i)
		}
		if i == len(s) {
			return 0, fmt.Errorf("%w: %q: missing unit suffix", ErrInvalidDuration, s)
		}

		var unit time.Duration
		switch s[i] {
		case 's':
			unit = time.Second
		case 'm':
			unit = time.Minute
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		default:
			return 0, fmt.Errorf("%w: %q: unknown unit %q", ErrInvalidDuration, s, s[i])
		}
		i++

		component := time.Duration(n) * unit
		if n != 0 && component/unit != time.Duration(n) {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, s)
		}
		total += component
	}

	return total, nil
}

// FormatSeconds renders d as the whole-second count used for TTL bucket
// directory names.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%d", int64(d/time.Second))
}
