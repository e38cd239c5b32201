package engine

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/runcache/artifact"
	"github.com/jonwraymond/runcache/fingerprint"
	"github.com/jonwraymond/runcache/janitor"
	"github.com/jonwraymond/runcache/observe"
)

// lockDirName holds per-operation lock files under the cache root.
const lockDirName = "lock"

// Engine owns the cache configuration shared by all operations it wraps: the
// artifact store, the fingerprinter, the janitor, the enable flag, and the
// observability hooks. Configuration is read once at construction; the
// enable flag is the only piece queried on every call.
type Engine struct {
	store   *artifact.Store
	sweeper *janitor.Janitor
	fp      fingerprint.Fingerprinter
	obs     observe.Observer

	enabled atomic.Bool

	// refreshGroup dedupes in-process background refreshes per fingerprint.
	// Cross-process duplication is accepted as benign redundant work.
	refreshGroup singleflight.Group

	// bg tracks detached background work so Drain can wait for it.
	bg sync.WaitGroup
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	root          string
	fp            fingerprint.Fingerprinter
	obs           observe.Observer
	sweepInterval time.Duration
	disabled      bool
}

// WithRoot overrides the cache root directory.
func WithRoot(dir string) Option {
	return func(o *options) { o.root = dir }
}

// WithFingerprinter overrides the hashing mechanism. The FNV fallback is
// accepted here but is not collision-resistant.
func WithFingerprinter(f fingerprint.Fingerprinter) Option {
	return func(o *options) { o.fp = f }
}

// WithObserver wires logging, metrics, and tracing.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.obs = obs }
}

// WithSweepInterval overrides the minimum interval between janitor sweeps.
// The janitor still shrinks it further for short-TTL buckets.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}

// WithDisabled starts the engine disabled; every wrapped call passes through
// until SetEnabled(true).
func WithDisabled() Option {
	return func(o *options) { o.disabled = true }
}

// New creates an engine. The cache root is created lazily on first write.
func New(opts ...Option) *Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.fp == nil {
		o.fp = fingerprint.NewSHA256()
	}
	if o.obs == nil {
		o.obs = observe.Nop()
	}

	store := artifact.NewStore(o.root)
	e := &Engine{
		store:   store,
		sweeper: janitor.New(store, o.sweepInterval),
		fp:      o.fp,
		obs:     o.obs,
	}
	e.enabled.Store(!o.disabled)
	return e
}

// Enabled reports whether caching is active. Queried on every wrapped call.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// SetEnabled toggles caching process-wide. Disabling does not tear down the
// cache root; re-enabling picks existing artifacts back up.
func (e *Engine) SetEnabled(v bool) {
	e.enabled.Store(v)
}

// Root returns the cache root directory.
func (e *Engine) Root() string {
	return e.store.Root()
}

// Wrap installs the caching layer around op. Configuration errors — invalid
// duration syntax, refresh exceeding TTL, an illegal environment variable
// name — abort wrapping; nothing is installed.
func (e *Engine) Wrap(op Runner, cfg WrapConfig) (*Wrapped, error) {
	if op == nil {
		return nil, ErrNilRunner
	}
	policy, err := cfg.policy()
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, ErrEmptyName
	}
	for _, name := range cfg.EnvNames {
		if err := fingerprint.ValidateEnvName(name); err != nil {
			return nil, err
		}
	}

	meta := observe.OpMeta{Name: cfg.Name, TTL: policy.TTL, Refresh: policy.Refresh}
	w := &Wrapped{
		engine:   e,
		op:       op,
		name:     cfg.Name,
		policy:   policy,
		envNames: append([]string(nil), cfg.EnvNames...),
		meta:     meta,
		logger:   e.obs.Logger().WithOp(meta),
	}

	if cfg.Mutex {
		if err := w.enableMutex(); err != nil {
			// Visible but non-fatal: degrade to unlocked caching rather
			// than silently dropping mutual exclusion.
			w.logger.Warn(context.Background(), "mutual exclusion unavailable, caching without it",
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	return w, nil
}

// Memoize installs the in-process, single-entry cache around op. Unlike
// Wrap, nothing touches disk and only an immediately repeated identical call
// is guaranteed to avoid re-invocation.
func (e *Engine) Memoize(name string, op Runner, envNames ...string) (*Memoized, error) {
	if op == nil {
		return nil, ErrNilRunner
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	for _, n := range envNames {
		if err := fingerprint.ValidateEnvName(n); err != nil {
			return nil, err
		}
	}
	return newMemoized(e, name, op, envNames), nil
}

// Drain blocks until all detached background work (refreshes, warms,
// sweeps) has finished. Callers never need this for correctness; it exists
// for orderly shutdown and deterministic tests.
func (e *Engine) Drain() {
	e.bg.Wait()
}

// lockPath returns the per-operation lock file. The name is digested so any
// operation identity maps to a filesystem-safe path.
func (e *Engine) lockPath(name string) (string, error) {
	digest, err := e.fp.Fingerprint(name, nil, nil)
	if err != nil {
		return "", err
	}
	if len(digest) > 16 {
		digest = digest[:16]
	}
	return filepath.Join(e.store.Root(), lockDirName, digest+".lock"), nil
}

// spawn runs fn as detached background work tracked by Drain.
func (e *Engine) spawn(fn func()) {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		fn()
	}()
}

// sweepSoon kicks an opportunistic background sweep. The janitor rate-limits
// itself, so calling this on every lookup is cheap.
func (e *Engine) sweepSoon(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	e.spawn(func() {
		start := time.Now()
		if e.sweeper.Sweep(ctx) {
			e.obs.Metrics().RecordSweep(ctx, time.Since(start))
		}
	})
}
