package artifact

import "time"

// Artifact is one invocation's captured outcome. It is immutable once fully
// written; the store never mutates a published artifact.
type Artifact struct {
	// Stdout holds the captured standard output, byte for byte. Trailing
	// newlines and embedded NUL bytes are preserved.
	Stdout []byte

	// Stderr holds the captured standard error, byte for byte.
	Stderr []byte

	// ExitCode is the invocation's exit status. Failures are stored like
	// successes; the store caches outcome, not just success.
	ExitCode int

	// CreatedAt is the artifact directory's modification time. Staleness is
	// computed against it.
	CreatedAt time.Time
}

// Success reports whether the captured invocation exited zero.
func (a *Artifact) Success() bool {
	return a.ExitCode == 0
}
