package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/orchestrator"
	"github.com/nighthawk/adaptive-load/internal/status"

	_ "github.com/nighthawk/adaptive-load/internal/inputsetter"
	_ "github.com/nighthawk/adaptive-load/internal/scoring"
	_ "github.com/nighthawk/adaptive-load/internal/stepcontroller"
)

// fakeClock advances only when Sleep or Advance is called, so deadline logic
// is exercised deterministically without real wallclock delay.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeDispatcher always succeeds at the transport level; responder decides
// each benchmark's request totals, and so its success-rate, from the
// requested rps.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
	// responder computes upstream_rq_total/2xx given the requested rps.
	responder func(rps uint32) (total, ok2xx int64)
}

func (d *fakeDispatcher) RunBenchmark(ctx context.Context, spec model.TrafficSpec, duration time.Duration) (model.RawBenchmarkOutput, *status.Status) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	total, ok2xx := d.responder(spec.RequestsPerSecond)
	return model.RawBenchmarkOutput{
		TrafficSpec:      spec,
		ActualDuration:   duration,
		UpstreamRqTotal:  total,
		ResponseCount2xx: ok2xx,
		RequestToResponse: model.LatencyStats{
			Mean: 5 * time.Millisecond,
		},
	}, status.Success()
}

// failAfterDispatcher succeeds for the first okCalls benchmarks, then
// reports a transport failure on every call after that, regardless of the
// requested rps.
type failAfterDispatcher struct {
	mu      sync.Mutex
	calls   int
	okCalls int
}

func (d *failAfterDispatcher) RunBenchmark(ctx context.Context, spec model.TrafficSpec, duration time.Duration) (model.RawBenchmarkOutput, *status.Status) {
	d.mu.Lock()
	d.calls++
	call := d.calls
	d.mu.Unlock()

	if call > d.okCalls {
		return model.RawBenchmarkOutput{}, status.New(status.Unavailable, "load generator dial failed")
	}
	return model.RawBenchmarkOutput{
		TrafficSpec:      spec,
		ActualDuration:   duration,
		UpstreamRqTotal:  1000,
		ResponseCount2xx: 1000,
		RequestToResponse: model.LatencyStats{
			Mean: 5 * time.Millisecond,
		},
	}, status.Success()
}

func baseSpec(successThreshold float64, initial float64) model.SessionSpec {
	one := 1.0
	return model.SessionSpec{
		TrafficTemplate: model.TrafficSpec{},
		StepController: model.PluginSpec{
			PluginName: "nighthawk.exponential_search",
			Config: map[string]interface{}{
				"initial_value":      initial,
				"exponential_factor": 2.0,
			},
		},
		MetricThresholds: []model.MetricThreshold{
			{
				Metric: model.MetricSpec{MetricName: "success-rate", MetricsPluginName: "nighthawk.builtin"},
				Threshold: model.ThresholdSpec{
					Weight: &one,
					ScoringFunction: model.PluginSpec{
						PluginName: "nighthawk.binary_scoring",
						Config:     map[string]interface{}{"lower_threshold": successThreshold},
					},
				},
			},
		},
	}
}

func TestRunSession_ConvergesAndRunsTestingStage(t *testing.T) {
	// Requests succeed fully below 500 rps, fail above.
	dispatcher := &fakeDispatcher{responder: func(rps uint32) (int64, int64) {
		if rps <= 500 {
			return 1000, 1000
		}
		return 1000, 0
	}}

	spec := baseSpec(0.99, 100)
	clock := newFakeClock()

	out := orchestrator.RunSession(context.Background(), spec, clock, dispatcher)

	require.Equal(t, status.OK, out.Status.Code)
	require.NotNil(t, out.TestingStageResult)
	assert.GreaterOrEqual(t, len(out.AdjustingStageResults), 1)
	assert.NotEmpty(t, out.SessionID)
}

func TestRunSession_InvalidSpecRejectsDurationPreset(t *testing.T) {
	spec := baseSpec(0.99, 100)
	d := model.Duration(5 * time.Second)
	spec.TrafficTemplate.Duration = &d

	out := orchestrator.RunSession(context.Background(), spec, newFakeClock(), &fakeDispatcher{
		responder: func(uint32) (int64, int64) { return 1, 1 },
	})

	assert.Equal(t, status.InvalidArgument, out.Status.Code)
	assert.Empty(t, out.AdjustingStageResults)
	assert.Nil(t, out.TestingStageResult)
}

func TestRunSession_UnknownStepControllerIsInvalidArgument(t *testing.T) {
	spec := baseSpec(0.99, 100)
	spec.StepController.PluginName = "does.not.exist"

	out := orchestrator.RunSession(context.Background(), spec, newFakeClock(), &fakeDispatcher{
		responder: func(uint32) (int64, int64) { return 1, 1 },
	})

	assert.Equal(t, status.InvalidArgument, out.Status.Code)
}

func TestRunSession_DoomedWhenInitialLoadAlreadyFails(t *testing.T) {
	dispatcher := &fakeDispatcher{responder: func(uint32) (int64, int64) { return 1000, 0 }}
	spec := baseSpec(0.99, 100)

	out := orchestrator.RunSession(context.Background(), spec, newFakeClock(), dispatcher)

	assert.Equal(t, status.FailedPrecondition, out.Status.Code)
	assert.Nil(t, out.TestingStageResult)
}

func TestRunSession_UndeclaredMetricsProviderIsInvalidArgument(t *testing.T) {
	spec := baseSpec(0.99, 100)
	spec.MetricThresholds[0].Metric.MetricsPluginName = "nighthawk.custom_stats"

	out := orchestrator.RunSession(context.Background(), spec, newFakeClock(), &fakeDispatcher{
		responder: func(uint32) (int64, int64) { return 1, 1 },
	})

	assert.Equal(t, status.InvalidArgument, out.Status.Code)
	assert.Empty(t, out.AdjustingStageResults)
}

func TestRunSession_DispatchFailureDuringAdjustingLoopIsDoomed(t *testing.T) {
	// Every benchmark dispatch fails from the start, so the step controller
	// never sees a single passing score. This must be treated the same as
	// a normal scored threshold failure on the initial load, not silently
	// read as success because MetricEvaluations came back empty.
	spec := baseSpec(0.99, 100)

	out := orchestrator.RunSession(context.Background(), spec, newFakeClock(), &failAfterDispatcher{okCalls: 0})

	require.Equal(t, status.FailedPrecondition, out.Status.Code)
	require.Len(t, out.AdjustingStageResults, 1)
	assert.NotEqual(t, status.OK, out.AdjustingStageResults[0].Status.Code)
	assert.Nil(t, out.TestingStageResult)
}

func TestRunSession_CancelledBeforeFirstIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	spec := baseSpec(0.99, 100)
	out := orchestrator.RunSession(ctx, spec, newFakeClock(), &fakeDispatcher{
		responder: func(uint32) (int64, int64) { return 1, 1 },
	})

	assert.Equal(t, status.Cancelled, out.Status.Code)
}
