// Package scoring implements the two reference ScoringFunction plugins
// (C3): binary and linear. Both implement
// include/nighthawk/adaptive_load/scoring_function.h's EvaluateMetric
// contract; the pack's original_source only carries that interface header,
// not the scoring function bodies, so the formulas themselves come
// straight from the distilled spec's threshold-scoring section (see
// DESIGN.md's Open Question notes).
package scoring

import (
	"github.com/nighthawk/adaptive-load/internal/config"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

func init() {
	registry.RegisterScoringFunctionFactory(binaryFactory{})
}

// BinaryConfig is the opaque config for nighthawk.binary_scoring. Exactly
// one of LowerThreshold/UpperThreshold must be set: a value is acceptable
// when it is >= LowerThreshold or <= UpperThreshold, respectively.
type BinaryConfig struct {
	LowerThreshold *float64 `yaml:"lower_threshold,omitempty"`
	UpperThreshold *float64 `yaml:"upper_threshold,omitempty"`
}

// Binary scores a value as +1 (passes) or -1 (fails) relative to a single
// threshold, with no gradation in between.
type Binary struct {
	lowerThreshold *float64
	upperThreshold *float64
}

// Evaluate returns +1 when value is on the acceptable side of whichever
// threshold is configured, -1 otherwise.
func (b Binary) Evaluate(value float64) float64 {
	var passes bool
	if b.lowerThreshold != nil {
		passes = value >= *b.lowerThreshold
	} else if b.upperThreshold != nil {
		passes = value <= *b.upperThreshold
	}
	if passes {
		return 1
	}
	return -1
}

type binaryFactory struct{}

func (binaryFactory) Name() string             { return "nighthawk.binary_scoring" }
func (binaryFactory) EmptyConfig() interface{} { return &BinaryConfig{} }

func (binaryFactory) ValidateConfig(raw map[string]interface{}) *status.Status {
	var cfg BinaryConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return status.New(status.InvalidArgument, err.Error())
	}
	if cfg.LowerThreshold == nil && cfg.UpperThreshold == nil {
		return status.New(status.InvalidArgument,
			"nighthawk.binary_scoring requires lower_threshold or upper_threshold")
	}
	if cfg.LowerThreshold != nil && cfg.UpperThreshold != nil {
		return status.New(status.InvalidArgument,
			"nighthawk.binary_scoring accepts only one of lower_threshold or upper_threshold")
	}
	return status.Success()
}

func (binaryFactory) Create(raw map[string]interface{}) (registry.ScoringFunction, *status.Status) {
	var cfg BinaryConfig
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, status.New(status.InvalidArgument, err.Error())
	}
	return Binary{lowerThreshold: cfg.LowerThreshold, upperThreshold: cfg.UpperThreshold}, status.Success()
}
