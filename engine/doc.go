// Package engine is the transparent result-caching engine: it wraps
// expensive, idempotent-ish operations and serves their captured stdout,
// stderr, and exit status from a disk-backed cache governed by a TTL/refresh
// staleness policy.
//
// A wrapped operation behaves exactly like the unwrapped one — same stdout,
// stderr, and exit status contract — modulo staleness. Consistency across
// processes is deliberately weak: cache population races are resolved
// last-writer-wins, and background refreshes are fire-and-forget. The
// trade-off favors latency over strictness, which is what an interactive
// caller such as a shell prompt wants.
package engine
