package lockfile

import "errors"

// ErrUnsupported indicates the platform provides no advisory file locking.
var ErrUnsupported = errors.New("lockfile: advisory locking not supported on this platform")

// Lock represents a held advisory lock. Release must be called on every exit
// path, including after the guarded operation fails.
type Lock interface {
	Release() error
}

// Supported reports whether advisory locking works on this platform. Callers
// wanting mutual exclusion should check this up front and degrade loudly.
func Supported() bool {
	return supported
}

// Acquire takes an exclusive advisory lock on path, creating the file if
// needed. It blocks until the lock is available.
func Acquire(path string) (Lock, error) {
	return acquire(path)
}
