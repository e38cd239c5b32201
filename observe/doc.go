// Package observe provides observability primitives for the cache engine.
//
// It is a pure instrumentation library: no caching, no execution, no I/O
// beyond exporter setup. The engine records cache outcomes (hit, stale,
// miss, refresh, sweep) through the Metrics interface, spans invocations
// through Tracer, and reports infrastructure degradation through Logger.
package observe
