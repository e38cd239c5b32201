// Package lockfile provides blocking advisory file locks for serializing
// cache recomputation across processes.
//
// Acquisition blocks indefinitely; there is no timeout. On platforms without
// flock the package fails fast with ErrUnsupported so callers can degrade to
// unlocked operation explicitly instead of silently no-opping.
package lockfile
