// Package memo is the in-process, disk-free alternative cache: it holds the
// single most recent successful result per memoized operation.
//
// The guarantee is deliberately weak — an immediately repeated identical
// call avoids re-invocation; anything beyond that may recompute. State lives
// in the calling process only and must never be relied upon across child
// processes that do not share its memory.
package memo
