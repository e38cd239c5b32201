package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels one cache lookup for metrics purposes.
type Outcome string

const (
	OutcomeHit     Outcome = "hit"     // fresh artifact served
	OutcomeStale   Outcome = "stale"   // stale artifact served, refresh scheduled
	OutcomeMiss    Outcome = "miss"    // foreground recomputation
	OutcomeBypass  Outcome = "bypass"  // caching disabled or degraded
	OutcomeForced  Outcome = "forced"  // explicit invalidation
	OutcomeRefresh Outcome = "refresh" // background recomputation completed
)

// Metrics records cache engine metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording is fire-and-forget.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one cache lookup with its outcome and the time
	// spent serving it (including any foreground recomputation).
	RecordLookup(ctx context.Context, meta OpMeta, outcome Outcome, duration time.Duration)

	// RecordSweep records one completed janitor sweep.
	RecordSweep(ctx context.Context, duration time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	lookupCount  metric.Int64Counter
	sweepCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookupCount, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Total number of cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	sweepCount, err := meter.Int64Counter(
		"cache.sweeps",
		metric.WithDescription("Total number of completed janitor sweeps"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.lookup.duration_ms",
		metric.WithDescription("Cache lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		lookupCount:  lookupCount,
		sweepCount:   sweepCount,
		durationHist: durationHist,
	}, nil
}

// RecordLookup records metrics for one cache lookup.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta OpMeta, outcome Outcome, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("op.name", meta.Name),
		attribute.String("cache.outcome", string(outcome)),
	)

	m.lookupCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordSweep records metrics for one completed sweep.
func (m *metricsImpl) RecordSweep(ctx context.Context, duration time.Duration) {
	m.sweepCount.Add(ctx, 1)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordLookup(ctx context.Context, meta OpMeta, outcome Outcome, duration time.Duration) {
}

func (m *noopMetrics) RecordSweep(ctx context.Context, duration time.Duration) {}

// Interface compile checks.
var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = (*noopMetrics)(nil)
)
