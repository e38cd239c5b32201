package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/runcache/artifact"
	"github.com/jonwraymond/runcache/fingerprint"
	"github.com/jonwraymond/runcache/lockfile"
	"github.com/jonwraymond/runcache/observe"
	"github.com/jonwraymond/runcache/staleness"
)

// Wrapped is one operation behind the caching layer. It exposes the same
// invoke contract as the underlying operation; the caller observes identical
// stdout, stderr, and exit status, modulo staleness.
type Wrapped struct {
	engine   *Engine
	op       Runner
	name     string
	policy   staleness.Policy
	envNames []string
	meta     observe.OpMeta
	logger   observe.Logger

	// lockPath is non-empty when cache-miss recomputation is serialized
	// across processes.
	lockPath string

	hits      atomic.Uint64
	misses    atomic.Uint64
	stales    atomic.Uint64
	refreshes atomic.Uint64
}

// Stats is a point-in-time snapshot of one wrapped operation's counters.
// Misses count foreground recomputations; Refreshes count background ones.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Stales    uint64
	Refreshes uint64
}

// Stats returns the operation's counters since wrapping.
func (w *Wrapped) Stats() Stats {
	return Stats{
		Hits:      w.hits.Load(),
		Misses:    w.misses.Load(),
		Stales:    w.stales.Load(),
		Refreshes: w.refreshes.Load(),
	}
}

// enableMutex wires the per-operation file lock, failing fast when the
// platform has no advisory locking.
func (w *Wrapped) enableMutex() error {
	if !lockfile.Supported() {
		return lockfile.ErrUnsupported
	}
	path, err := w.engine.lockPath(w.name)
	if err != nil {
		return err
	}
	w.lockPath = path
	return nil
}

// Invoke serves the operation through the cache.
//
// Fresh artifacts are served directly. Stale artifacts are served while one
// background recomputation is scheduled. Expired or missing artifacts force
// a foreground recomputation, optionally serialized by the per-operation
// lock; a waiter that acquires the lock after another process populated the
// cache observes that artifact as a hit instead of recomputing.
func (w *Wrapped) Invoke(ctx context.Context, args []string) Result {
	if !w.engine.Enabled() {
		w.engine.obs.Metrics().RecordLookup(ctx, w.meta, observe.OutcomeBypass, 0)
		return w.op.Invoke(ctx, args)
	}

	fp, err := w.fingerprint(args)
	if err != nil {
		// Cache-infrastructure failure: operate unwrapped, visibly.
		w.logger.Warn(ctx, "fingerprint unavailable, invoking uncached",
			observe.Field{Key: "error", Value: err.Error()})
		w.engine.obs.Metrics().RecordLookup(ctx, w.meta, observe.OutcomeBypass, 0)
		return w.op.Invoke(ctx, args)
	}

	start := time.Now()
	ctx, span := w.engine.obs.Tracer().StartSpan(ctx, w.meta)

	res, outcome := w.lookup(ctx, fp, args)

	w.engine.obs.Tracer().EndSpan(span, outcome, nil)
	w.engine.obs.Metrics().RecordLookup(ctx, w.meta, outcome, time.Since(start))
	w.engine.sweepSoon(ctx)
	return res
}

func (w *Wrapped) lookup(ctx context.Context, fp string, args []string) (Result, observe.Outcome) {
	if art, ok := w.engine.store.Read(fp, w.policy.TTL); ok {
		switch w.policy.ClassifyAt(art.CreatedAt, time.Now()) {
		case staleness.Fresh:
			w.hits.Add(1)
			return replay(art), observe.OutcomeHit
		case staleness.Stale:
			w.stales.Add(1)
			w.scheduleRefresh(ctx, fp, args)
			return replay(art), observe.OutcomeStale
		}
		// Expired but not yet swept: recompute in the foreground rather
		// than serve a value older than its TTL.
	}

	w.misses.Add(1)
	return w.recomputeLocked(ctx, fp, args), observe.OutcomeMiss
}

// Warm populates the cache in the background without blocking the caller.
// It is a no-op when a fresh artifact is already published.
func (w *Wrapped) Warm(ctx context.Context, args []string) {
	if !w.engine.Enabled() {
		return
	}
	fp, err := w.fingerprint(args)
	if err != nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	w.engine.spawn(func() {
		w.engine.refreshGroup.Do(fp, func() (any, error) {
			if art, ok := w.engine.store.Read(fp, w.policy.TTL); ok {
				if w.policy.ClassifyAt(art.CreatedAt, time.Now()) == staleness.Fresh {
					return nil, nil
				}
			}
			w.recompute(ctx, fp, args)
			return nil, nil
		})
	})
}

// ForceInvalidate unpublishes any cached artifact and recomputes
// synchronously, returning the fresh result.
func (w *Wrapped) ForceInvalidate(ctx context.Context, args []string) Result {
	if !w.engine.Enabled() {
		return w.op.Invoke(ctx, args)
	}
	fp, err := w.fingerprint(args)
	if err != nil {
		return w.op.Invoke(ctx, args)
	}
	if err := w.engine.store.Remove(fp, w.policy.TTL); err != nil {
		w.logger.Warn(ctx, "invalidate failed", observe.Field{Key: "error", Value: err.Error()})
	}
	res := w.recomputeLocked(ctx, fp, args)
	w.engine.obs.Metrics().RecordLookup(ctx, w.meta, observe.OutcomeForced, 0)
	return res
}

// scheduleRefresh fires one background recomputation for a stale artifact.
// In-process duplicates collapse through the singleflight group; duplicates
// across processes are benign redundant work, not a correctness bug.
func (w *Wrapped) scheduleRefresh(ctx context.Context, fp string, args []string) {
	ctx = context.WithoutCancel(ctx)
	argsCopy := append([]string(nil), args...)
	w.engine.spawn(func() {
		w.engine.refreshGroup.Do(fp, func() (any, error) {
			w.recompute(ctx, fp, argsCopy)
			w.refreshes.Add(1)
			w.engine.obs.Metrics().RecordLookup(ctx, w.meta, observe.OutcomeRefresh, 0)
			return nil, nil
		})
	})
}

// recomputeLocked is the foreground recomputation path, serialized by the
// per-operation lock when one is configured. Lock acquisition blocks
// indefinitely; the lock is released on every exit path.
func (w *Wrapped) recomputeLocked(ctx context.Context, fp string, args []string) Result {
	if w.lockPath == "" {
		return w.recompute(ctx, fp, args)
	}

	if err := os.MkdirAll(filepath.Dir(w.lockPath), 0o700); err != nil {
		w.logger.Warn(ctx, "lock dir unavailable, recomputing unlocked",
			observe.Field{Key: "error", Value: err.Error()})
		return w.recompute(ctx, fp, args)
	}
	lock, err := lockfile.Acquire(w.lockPath)
	if err != nil {
		w.logger.Warn(ctx, "lock unavailable, recomputing unlocked",
			observe.Field{Key: "error", Value: err.Error()})
		return w.recompute(ctx, fp, args)
	}
	defer lock.Release()

	// Another process may have recomputed while this one waited: read
	// again and treat anything not expired as a hit.
	if art, ok := w.engine.store.Read(fp, w.policy.TTL); ok {
		if w.policy.ClassifyAt(art.CreatedAt, time.Now()) != staleness.Expired {
			return replay(art)
		}
	}

	return w.recompute(ctx, fp, args)
}

// recompute invokes the operation and publishes the outcome — success or
// failure alike; the store caches outcome, not just success. A publish
// failure degrades to uncached operation with a warning.
func (w *Wrapped) recompute(ctx context.Context, fp string, args []string) Result {
	res := w.op.Invoke(ctx, args)

	art := &artifact.Artifact{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
	}
	if err := w.engine.store.Write(fp, w.policy.TTL, art); err != nil {
		w.logger.Warn(ctx, "publish failed, result served uncached",
			observe.Field{Key: "error", Value: err.Error()})
	}
	return res
}

// fingerprint derives the cache key from the call's arguments and the
// operation's captured environment values.
func (w *Wrapped) fingerprint(args []string) (string, error) {
	return w.engine.fp.Fingerprint(w.name, args, fingerprint.CaptureEnv(w.envNames))
}

// replay converts a stored artifact back into a caller-visible result.
func replay(art *artifact.Artifact) Result {
	return Result{
		Stdout:   art.Stdout,
		Stderr:   art.Stderr,
		ExitCode: art.ExitCode,
		Cached:   true,
	}
}
