package scoring

import (
	"github.com/nighthawk/adaptive-load/internal/config"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func init() {
	registry.RegisterScoringFunctionFactory(linearFactory{})
}

// LinearConfig is the opaque config for nighthawk.linear_scoring.
type LinearConfig struct {
	Threshold       float64 `yaml:"threshold"`
	ScalingConstant float64 `yaml:"scaling_constant" validate:"required"`
}

// Linear scores k * (threshold - value), clamped to [-1, +1]. Positive
// when value sits below threshold, meaning there is headroom to push load
// up further.
type Linear struct {
	threshold       float64
	scalingConstant float64
}

func (l Linear) Evaluate(value float64) float64 {
	score := l.scalingConstant * (l.threshold - value)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

type linearFactory struct{}

func (linearFactory) Name() string             { return "nighthawk.linear_scoring" }
func (linearFactory) EmptyConfig() interface{} { return &LinearConfig{} }

func (linearFactory) ValidateConfig(raw map[string]interface{}) *status.Status {
	var cfg LinearConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return status.New(status.InvalidArgument, err.Error())
	}
	return status.Success()
}

func (linearFactory) Create(raw map[string]interface{}) (registry.ScoringFunction, *status.Status) {
	var cfg LinearConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, status.New(status.InvalidArgument, err.Error())
	}
	return Linear{threshold: cfg.Threshold, scalingConstant: cfg.ScalingConstant}, status.Success()
}
