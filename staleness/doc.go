// Package staleness classifies cached artifacts as fresh, stale, or expired
// based on their age and a per-operation (refresh, TTL) policy.
//
// It also provides the strict compact-duration parser used for per-operation
// configuration ("90s", "1h30m", "2d").
package staleness
