// Package inputsetter implements the InputVariableSetter plugins (C5):
// nighthawk.rps, the reference setter applying a scalar recommendation to
// a traffic spec's requests-per-second field, and nighthawk.http_header, a
// setter supplementing the distillation with a second target field.
//
// Grounded on
// _examples/original_source/source/adaptive_load/input_variable_setter_impl.cc
// (RequestsPerSecondInputVariableSetter, HttpHeaderInputVariableSetter).
package inputsetter

import (
	"math"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func init() {
	registry.RegisterInputVariableSetterFactory(rpsFactory{})
}

// maxUint32 is the inclusive upper bound on an acceptable requests-per-second
// value: spec §4.5 rejects anything outside [0, 2^32-1].
const maxUint32 = 1<<32 - 1

// RPS sets TrafficSpec.RequestsPerSecond.
type RPS struct{}

// Set implements registry.InputVariableSetter.
func (RPS) Set(spec *model.TrafficSpec, value float64) *status.Status {
	if value < 0 || value > maxUint32 || math.IsNaN(value) {
		return status.Newf(status.InvalidArgument,
			"nighthawk.rps: value %v out of range [0, %d]", value, uint32(maxUint32))
	}
	spec.RequestsPerSecond = uint32(value)
	return status.Success()
}

type rpsFactory struct{}

func (rpsFactory) Name() string             { return "nighthawk.rps" }
func (rpsFactory) EmptyConfig() interface{} { return &struct{}{} }

func (rpsFactory) ValidateConfig(raw map[string]interface{}) *status.Status {
	return status.Success()
}

func (rpsFactory) Create(raw map[string]interface{}) (registry.InputVariableSetter, *status.Status) {
	return RPS{}, status.Success()
}
