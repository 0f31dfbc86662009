// Package stepcontroller implements the reference StepController (C4):
// an exponential range-finding search followed by a binary search,
// converging on the traffic level at which the configured thresholds
// first start failing.
//
// Grounded on
// _examples/original_source/source/adaptive_load/step_controller_impl.cc's
// ExponentialSearchStepController — same two-phase state machine, same
// aggregate-scoring rule, same doom/convergence conditions.
package stepcontroller

import (
	"math"

	"github.com/nighthawk/adaptive-load/internal/config"
	"github.com/nighthawk/adaptive-load/internal/inputsetter"
	"github.com/nighthawk/adaptive-load/internal/logging"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func init() {
	registry.RegisterStepControllerFactory(exponentialFactory{})
}

// ExponentialSearchConfig is the opaque config for nighthawk.exponential_search.
type ExponentialSearchConfig struct {
	InitialValue        float64           `yaml:"initial_value" validate:"required"`
	ExponentialFactor   float64           `yaml:"exponential_factor,omitempty"`
	InputVariableSetter *model.PluginSpec `yaml:"input_variable_setter,omitempty"`
}

type phase int

const (
	rangeFinding phase = iota
	binarySearch
)

// ExponentialSearch is the reference step controller.
type ExponentialSearch struct {
	trafficTemplate model.TrafficSpec
	setter          registry.InputVariableSetter
	factor          float64

	phase      phase
	previous   float64
	current    float64
	bottom     float64
	top        float64
	doomReason string
}

// GetCurrentTrafficSpec implements registry.StepController.
func (e *ExponentialSearch) GetCurrentTrafficSpec() (model.TrafficSpec, *status.Status) {
	spec := e.trafficTemplate.Clone()
	if st := e.setter.Set(&spec, e.current); !st.Ok() {
		return model.TrafficSpec{}, st
	}
	return spec, status.Success()
}

// IsConverged implements registry.StepController.
func (e *ExponentialSearch) IsConverged() bool {
	if e.phase != binarySearch || e.doomReason != "" {
		return false
	}
	return math.Abs(e.current/e.previous-1) < 0.01
}

// IsDoomed implements registry.StepController.
func (e *ExponentialSearch) IsDoomed() (string, bool) {
	return e.doomReason, e.doomReason != ""
}

// UpdateAndRecompute implements registry.StepController.
func (e *ExponentialSearch) UpdateAndRecompute(result model.BenchmarkResult) {
	score := aggregateScore(result)

	logger := logging.StepController()
	logger.Debug().
		Float64("current", e.current).
		Float64("score", score).
		Str("phase", phaseName(e.phase)).
		Msg("recomputing step controller state")

	switch e.phase {
	case rangeFinding:
		if score > 0 {
			e.previous = e.current
			e.current = e.current * e.factor
			return
		}
		if math.IsNaN(e.previous) {
			e.doomReason = "initial load already exceeds thresholds"
			return
		}
		e.bottom = e.previous
		e.top = e.current
		e.previous = e.current
		e.current = (e.bottom + e.top) / 2
		e.phase = binarySearch
	case binarySearch:
		if score > 0 {
			e.bottom = e.current
		} else {
			e.top = e.current
		}
		e.previous = e.current
		e.current = (e.bottom + e.top) / 2
	}
}

func phaseName(p phase) string {
	if p == binarySearch {
		return "BINARY_SEARCH"
	}
	return "RANGE_FINDING"
}

// aggregateScore implements the all-scored-metrics-pass-or-fail rule: any
// weighted metric with a negative threshold score fails the whole
// iteration. Informational metrics (weight == 0) never affect it. A
// benchmark that never produced metric evaluations at all — a dispatch or
// evaluator failure, reported via a non-OK result.Status — is scored as a
// failure too, so the step controller's doom/convergence bookkeeping still
// advances instead of mistaking "no data" for "every threshold passed".
func aggregateScore(result model.BenchmarkResult) float64 {
	if result.Status.Code != status.OK {
		return -1
	}
	for _, e := range result.MetricEvaluations {
		if e.Weight > 0 && e.ThresholdScore < 0 {
			return -1
		}
	}
	return 1
}

type exponentialFactory struct{}

func (exponentialFactory) Name() string             { return "nighthawk.exponential_search" }
func (exponentialFactory) EmptyConfig() interface{} { return &ExponentialSearchConfig{} }

func (exponentialFactory) ValidateConfig(raw map[string]interface{}) *status.Status {
	var cfg ExponentialSearchConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return status.New(status.InvalidArgument, err.Error())
	}
	if cfg.InputVariableSetter != nil {
		if _, st := registry.LoadInputVariableSetter(*cfg.InputVariableSetter); !st.Ok() {
			return st
		}
	}
	return status.Success()
}

func (exponentialFactory) Create(raw map[string]interface{}, trafficTemplate model.TrafficSpec) (registry.StepController, *status.Status) {
	var cfg ExponentialSearchConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, status.New(status.InvalidArgument, err.Error())
	}

	factor := cfg.ExponentialFactor
	if factor <= 0 {
		factor = 2.0
	}

	var setter registry.InputVariableSetter
	if cfg.InputVariableSetter != nil {
		s, st := registry.LoadInputVariableSetter(*cfg.InputVariableSetter)
		if !st.Ok() {
			return nil, st
		}
		setter = s
	} else {
		setter = inputsetter.RPS{}
	}

	return &ExponentialSearch{
		trafficTemplate: trafficTemplate,
		setter:          setter,
		factor:          factor,
		phase:           rangeFinding,
		previous:        math.NaN(),
		current:         cfg.InitialValue,
		bottom:          math.NaN(),
		top:             math.NaN(),
	}, status.Success()
}
