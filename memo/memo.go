package memo

import "sync"

// Memoizer holds exactly one entry: the most recent successful result of the
// operation it guards. The entry is keyed by fingerprint, so any call whose
// arguments or environment values differ implicitly invalidates it.
//
// Contract:
// - Concurrency: safe for concurrent use within one process.
// - Failures: a non-zero exit is never stored; a prior entry survives it.
// - Stderr: never stored; it is only ever produced live by a real invocation.
type Memoizer struct {
	mu     sync.Mutex
	key    string
	stdout []byte
	valid  bool
}

// New creates an empty memoizer.
func New() *Memoizer {
	return &Memoizer{}
}

// Get returns the stored stdout if key matches the single stored entry.
func (m *Memoizer) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid || m.key != key {
		return nil, false
	}
	return m.stdout, true
}

// Store records a result, overwriting the prior entry. Failed invocations
// (non-zero exit) are not cached and leave the prior entry intact.
func (m *Memoizer) Store(key string, stdout []byte, exitCode int) {
	if exitCode != 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	m.stdout = stdout
	m.valid = true
}

// Reset drops the stored entry.
func (m *Memoizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	m.stdout = nil
	m.valid = false
}
