package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			"minimal valid",
			Config{ServiceName: "runcache"},
			nil,
		},
		{
			"missing service name",
			Config{},
			ErrMissingServiceName,
		},
		{
			"valid tracing",
			Config{ServiceName: "runcache", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5}},
			nil,
		},
		{
			"bad tracing exporter",
			Config{ServiceName: "runcache", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}},
			ErrInvalidTracingExporter,
		},
		{
			"sample pct out of range",
			Config{ServiceName: "runcache", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5}},
			ErrInvalidSamplePct,
		},
		{
			"bad metrics exporter",
			Config{ServiceName: "runcache", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}},
			ErrInvalidMetricsExporter,
		},
		{
			"bad log level",
			Config{ServiceName: "runcache", Logging: LoggingConfig{Enabled: true, Level: "verbose"}},
			ErrInvalidLogLevel,
		},
		{
			"disabled subsystems skip validation",
			Config{ServiceName: "runcache", Tracing: TracingConfig{Exporter: "zipkin"}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "runcache"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	// All primitives are usable no-ops.
	ctx, span := obs.Tracer().StartSpan(context.Background(), OpMeta{Name: "op"})
	if ctx == nil {
		t.Error("StartSpan() should return a context")
	}
	obs.Tracer().EndSpan(span, OutcomeHit, nil)
	obs.Metrics().RecordLookup(context.Background(), OpMeta{Name: "op"}, OutcomeHit, time.Millisecond)
	obs.Logger().Info(context.Background(), "ignored")

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); err == nil {
		t.Error("NewObserver() with invalid config should error")
	}
}

func TestNop(t *testing.T) {
	obs := Nop()
	obs.Metrics().RecordSweep(context.Background(), time.Second)
	obs.Logger().Warn(context.Background(), "noop")
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestOpMeta_SpanName(t *testing.T) {
	meta := OpMeta{Name: "git-status"}
	if got := meta.SpanName(); got != "cache.invoke.git-status" {
		t.Errorf("SpanName() = %q, want %q", got, "cache.invoke.git-status")
	}
}
