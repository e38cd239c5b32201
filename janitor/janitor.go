package janitor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jonwraymond/runcache/artifact"
)

const (
	// DefaultInterval is the minimum time between sweeps of one cache root.
	DefaultInterval = time.Minute

	// lockDirName is the sweep mutex: exclusive directory creation ensures
	// only one sweep runs at a time across processes.
	lockDirName = "sweep.lock"

	// staleLockAge is the age past which a leftover lock dir (from a crashed
	// sweeper) is broken.
	staleLockAge = 5 * time.Minute
)

// Janitor sweeps a store's cache root.
//
// Contract:
// - Concurrency: safe for concurrent use; at most one sweep runs per root.
// - Errors: sweeps are best-effort; individual failures are swallowed.
type Janitor struct {
	store    *artifact.Store
	interval time.Duration
}

// New creates a janitor for the store. A non-positive interval selects
// DefaultInterval.
func New(store *artifact.Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Janitor{store: store, interval: interval}
}

// LastSweep returns the time of the last completed sweep, or the zero time
// if the root has never been swept.
func (j *Janitor) LastSweep() time.Time {
	info, err := os.Stat(j.store.MarkerPath())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Sweep deletes expired artifact directories and dangling pointers.
//
// It no-ops unless the effective interval has elapsed since the last sweep.
// The effective interval shrinks to the shortest bucket TTL present, so a
// 10-second TTL is swept on a 10-second cadence rather than waiting out the
// configured minute. Returns true if a sweep actually ran.
func (j *Janitor) Sweep(ctx context.Context) bool {
	buckets := j.store.Buckets()
	if len(buckets) == 0 {
		return false
	}

	if last := j.LastSweep(); !last.IsZero() {
		if time.Since(last) < j.effectiveInterval(buckets) {
			return false
		}
	}

	release, ok := j.lock()
	if !ok {
		return false
	}
	defer release()

	for _, b := range buckets {
		if ctx.Err() != nil {
			break
		}
		j.sweepBucket(ctx, b)
	}

	j.touchMarker()
	return true
}

// effectiveInterval is the configured interval clamped down to the shortest
// bucket TTL.
func (j *Janitor) effectiveInterval(buckets []artifact.Bucket) time.Duration {
	interval := j.interval
	for _, b := range buckets {
		if b.TTL < interval {
			interval = b.TTL
		}
	}
	return interval
}

// lock acquires the sweep mutex via exclusive directory creation. A lock dir
// left behind by a crashed sweeper is broken once it is old enough.
func (j *Janitor) lock() (release func(), ok bool) {
	dir := filepath.Join(j.store.Root(), lockDirName)
	err := os.Mkdir(dir, 0o700)
	if os.IsExist(err) {
		info, statErr := os.Stat(dir)
		if statErr != nil || time.Since(info.ModTime()) < staleLockAge {
			return nil, false
		}
		_ = os.Remove(dir)
		err = os.Mkdir(dir, 0o700)
	}
	if err != nil {
		return nil, false
	}
	return func() { _ = os.Remove(dir) }, true
}

// sweepBucket removes expired artifact dirs, then pointers left dangling.
func (j *Janitor) sweepBucket(ctx context.Context, b artifact.Bucket) {
	entries, err := os.ReadDir(b.Path)
	if err != nil {
		return
	}

	now := time.Now()
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if !artifact.IsArtifactDir(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) >= b.TTL {
			_ = os.RemoveAll(filepath.Join(b.Path, e.Name()))
		}
	}

	// Second pass: pointers whose artifact dir no longer exists.
	entries, err = os.ReadDir(b.Path)
	if err != nil {
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if artifact.IsArtifactDir(e.Name()) || e.Type()&os.ModeSymlink == 0 {
			continue
		}
		pointer := filepath.Join(b.Path, e.Name())
		if _, err := os.Stat(pointer); err != nil {
			_ = os.Remove(pointer)
		}
	}
}

// touchMarker records the sweep time as the marker file's mtime.
func (j *Janitor) touchMarker() {
	marker := j.store.MarkerPath()
	now := time.Now()
	if err := os.Chtimes(marker, now, now); err != nil {
		if f, err := os.OpenFile(marker, os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			_ = f.Close()
		}
	}
}
