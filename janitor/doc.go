// Package janitor reclaims expired artifacts and dangling pointers from a
// cache root with a rate-limited, mutually-exclusive, best-effort sweep.
//
// Sweeps are opportunistic: callers fire them in the background after
// serving a result. A sweep that loses a race with a writer or another sweep
// simply gives up; the next sweep catches whatever was missed.
package janitor
