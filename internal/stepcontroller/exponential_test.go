package stepcontroller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func passingResult() model.BenchmarkResult {
	return model.BenchmarkResult{
		MetricEvaluations: []model.MetricEvaluation{
			{MetricID: "nighthawk.builtin/success-rate", Weight: 1, ThresholdScore: 1},
		},
	}
}

func failingResult() model.BenchmarkResult {
	return model.BenchmarkResult{
		MetricEvaluations: []model.MetricEvaluation{
			{MetricID: "nighthawk.builtin/success-rate", Weight: 1, ThresholdScore: -1},
		},
	}
}

// transportFailureResult models what the orchestrator feeds the step
// controller when a benchmark never produced any metric evaluations at
// all — a dispatch or evaluator failure — rather than a normal scored
// threshold failure.
func transportFailureResult() model.BenchmarkResult {
	return model.BenchmarkResult{
		Status: *status.New(status.Unavailable, "load generator dial failed"),
	}
}

func newController(t *testing.T, initial, factor float64) registry.StepController {
	t.Helper()
	cfg := map[string]interface{}{"initial_value": initial}
	if factor != 0 {
		cfg["exponential_factor"] = factor
	}
	sc, st := registry.LoadStepController(model.PluginSpec{
		PluginName: "nighthawk.exponential_search",
		Config:     cfg,
	}, model.TrafficSpec{})
	require.True(t, st.Ok())
	return sc
}

func TestExponentialSearch_RangeFindingDoublesOnPass(t *testing.T) {
	sc := newController(t, 100, 0)

	spec, st := sc.GetCurrentTrafficSpec()
	require.True(t, st.Ok())
	assert.Equal(t, uint32(100), spec.RequestsPerSecond)

	sc.UpdateAndRecompute(passingResult())
	spec, st = sc.GetCurrentTrafficSpec()
	require.True(t, st.Ok())
	assert.Equal(t, uint32(200), spec.RequestsPerSecond)
}

func TestExponentialSearch_DoomedWhenInitialValueFails(t *testing.T) {
	sc := newController(t, 100, 0)
	sc.UpdateAndRecompute(failingResult())

	reason, doomed := sc.IsDoomed()
	assert.True(t, doomed)
	assert.Equal(t, "initial load already exceeds thresholds", reason)
}

func TestExponentialSearch_TransitionsToBinarySearch(t *testing.T) {
	sc := newController(t, 100, 2)
	sc.UpdateAndRecompute(passingResult()) // 100 -> 200
	sc.UpdateAndRecompute(failingResult()) // fails at 200, bottom=100 top=200 current=150

	spec, st := sc.GetCurrentTrafficSpec()
	require.True(t, st.Ok())
	assert.Equal(t, uint32(150), spec.RequestsPerSecond)
}

func TestExponentialSearch_ConvergesWhenStable(t *testing.T) {
	sc := newController(t, 1000, 2)
	sc.UpdateAndRecompute(passingResult()) // 1000 -> 2000
	sc.UpdateAndRecompute(failingResult()) // binary search: bottom=1000 top=2000 current=1500
	assert.False(t, sc.IsConverged())

	// Drive the binary search down close enough to converge.
	for i := 0; i < 20; i++ {
		spec, _ := sc.GetCurrentTrafficSpec()
		if float64(spec.RequestsPerSecond) > 1500 {
			sc.UpdateAndRecompute(failingResult())
		} else {
			sc.UpdateAndRecompute(passingResult())
		}
		if sc.IsConverged() {
			return
		}
	}
	t.Fatal("expected convergence within bounded binary search iterations")
}

func TestExponentialSearch_TransportFailureScoresAsFailureNotSuccess(t *testing.T) {
	sc := newController(t, 100, 0)
	sc.UpdateAndRecompute(transportFailureResult())

	// An empty-evaluations, non-OK result must never be read as "every
	// threshold passed" (range-finding would otherwise double forever).
	reason, doomed := sc.IsDoomed()
	assert.True(t, doomed)
	assert.Equal(t, "initial load already exceeds thresholds", reason)
}

func TestExponentialSearch_TransportFailureAfterRangeFindingBehavesLikeFailure(t *testing.T) {
	sc := newController(t, 100, 2)
	sc.UpdateAndRecompute(passingResult())          // 100 -> 200
	sc.UpdateAndRecompute(transportFailureResult()) // fails at 200, same as failingResult()

	spec, st := sc.GetCurrentTrafficSpec()
	require.True(t, st.Ok())
	assert.Equal(t, uint32(150), spec.RequestsPerSecond)
}

func TestExponentialSearch_DefaultsFactorWhenNonPositive(t *testing.T) {
	sc := newController(t, 100, -5)
	sc.UpdateAndRecompute(passingResult())
	spec, _ := sc.GetCurrentTrafficSpec()
	assert.Equal(t, uint32(200), spec.RequestsPerSecond)
}
