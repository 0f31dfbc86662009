package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nighthawk/adaptive-load/internal/metrics"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func sampleOutput() model.RawBenchmarkOutput {
	return model.RawBenchmarkOutput{
		TrafficSpec:      model.TrafficSpec{RequestsPerSecond: 100},
		ActualDuration:   10 * time.Second,
		UpstreamRqTotal:  950,
		ResponseCount2xx: 900,
		RequestToResponse: model.LatencyStats{
			Min:    1 * time.Millisecond,
			Mean:   10 * time.Millisecond,
			Max:    50 * time.Millisecond,
			PStdev: 2 * time.Millisecond,
		},
	}
}

func TestBuiltin_RateMetrics(t *testing.T) {
	b := metrics.NewBuiltin(sampleOutput())
	ctx := context.Background()

	v, st := b.GetMetricValue(ctx, "attempted-rps", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, 100.0, v)

	v, st = b.GetMetricValue(ctx, "achieved-rps", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, 95.0, v)

	v, st = b.GetMetricValue(ctx, "send-rate", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.InDelta(t, 0.95, v, 1e-9)

	v, st = b.GetMetricValue(ctx, "success-rate", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.InDelta(t, 900.0/950.0, v, 1e-9)
}

func TestBuiltin_LatencyMetrics(t *testing.T) {
	b := metrics.NewBuiltin(sampleOutput())
	ctx := context.Background()

	v, st := b.GetMetricValue(ctx, "latency-ns-mean", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, float64(10*time.Millisecond), v)

	v, st = b.GetMetricValue(ctx, "latency-ns-mean-plus-2stdev", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, float64(10*time.Millisecond)+2*float64(2*time.Millisecond), v)
}

func TestBuiltin_UnknownName(t *testing.T) {
	b := metrics.NewBuiltin(sampleOutput())
	v, st := b.GetMetricValue(context.Background(), "no-such-metric", model.ReportingPeriod{})
	assert.Equal(t, 0.0, v)
	require.False(t, st.Ok())
	assert.Equal(t, status.NotFound, st.Code)
}

func TestBuiltin_DivisionByZero(t *testing.T) {
	out := sampleOutput()
	out.TrafficSpec.RequestsPerSecond = 0
	out.UpstreamRqTotal = 0
	b := metrics.NewBuiltin(out)

	v, st := b.GetMetricValue(context.Background(), "send-rate", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, 0.0, v)

	v, st = b.GetMetricValue(context.Background(), "success-rate", model.ReportingPeriod{})
	require.True(t, st.Ok())
	assert.Equal(t, 0.0, v)
}

func TestBuiltin_SupportedMetricNames(t *testing.T) {
	b := metrics.NewBuiltin(sampleOutput())
	names := b.SupportedMetricNames()
	assert.Len(t, names, 11)
	assert.Contains(t, names, "achieved-rps")
}
