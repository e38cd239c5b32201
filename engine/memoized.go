package engine

import (
	"context"

	"github.com/jonwraymond/runcache/fingerprint"
	"github.com/jonwraymond/runcache/memo"
)

// Memoized is one operation behind the in-process, single-entry cache. It
// holds at most the one most recent successful result; any call whose
// arguments or environment differ invalidates it.
//
// On a hit only stdout is replayed — stderr is produced live by the one real
// invocation that populated the entry and never again. State is bound to
// this process and must not be relied upon across child processes.
type Memoized struct {
	engine   *Engine
	op       Runner
	name     string
	envNames []string
	cache    *memo.Memoizer
}

func newMemoized(e *Engine, name string, op Runner, envNames []string) *Memoized {
	return &Memoized{
		engine:   e,
		op:       op,
		name:     name,
		envNames: append([]string(nil), envNames...),
		cache:    memo.New(),
	}
}

// Invoke serves the operation through the memoizer. A hit requires the
// fingerprint to match the stored entry and that entry to have exited zero;
// everything else invokes the operation, storing the result only on success.
func (m *Memoized) Invoke(ctx context.Context, args []string) Result {
	if !m.engine.Enabled() {
		return m.op.Invoke(ctx, args)
	}

	fp, err := m.engine.fp.Fingerprint(m.name, args, fingerprint.CaptureEnv(m.envNames))
	if err != nil {
		return m.op.Invoke(ctx, args)
	}

	if stdout, ok := m.cache.Get(fp); ok {
		return Result{Stdout: stdout, ExitCode: 0, Cached: true}
	}

	res := m.op.Invoke(ctx, args)
	m.cache.Store(fp, res.Stdout, res.ExitCode)
	return res
}

// Reset drops the stored entry.
func (m *Memoized) Reset() {
	m.cache.Reset()
}
