// Package registry is the plugin registry (C1): name-to-factory lookup
// for the controller's four plugin kinds, plus the configuration
// validation dispatch every other component routes through.
//
// It is the direct analogue of the teacher's internal/plugins global
// registry (internal/plugins/registry.go, base_plugin.go): a
// concurrency-safe map from name to factory, populated by explicit
// Register calls (typically from a plugin package's init()). Metrics
// providers and the step controller are loaded once at session start;
// scoring functions are loaded by the metrics evaluator for every
// benchmark it analyzes. Where the teacher has one PluginHandler kind, this
// registry has four independent namespaces — MetricsProvider,
// ScoringFunction, StepController, InputVariableSetter — one typed map and
// one typed Register function per kind, so a factory registered under the
// wrong kind is a
// compile-time type error rather than a runtime misconfiguration.
package registry

import (
	"context"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/status"
)

// MetricsProvider is a plugin that answers queries for named metrics over
// a reporting period (C2's built-in extractor and any custom provider both
// implement this).
type MetricsProvider interface {
	// GetMetricValue returns the named metric's value for the given
	// reporting period. Unsupported names return NotFound.
	GetMetricValue(ctx context.Context, metricName string, period model.ReportingPeriod) (float64, *status.Status)
	// SupportedMetricNames lists every name this provider can answer.
	SupportedMetricNames() []string
}

// ScoringFunction maps a measured value to a score in [-1, +1] relative to
// a configured threshold (C3).
type ScoringFunction interface {
	Evaluate(value float64) float64
}

// StepController drives the search for the maximum sustainable load (C4).
type StepController interface {
	// GetCurrentTrafficSpec returns a traffic spec cloned from the
	// session's template with the controller's current recommendation
	// applied via its InputVariableSetter.
	GetCurrentTrafficSpec() (model.TrafficSpec, *status.Status)
	// IsConverged reports whether further iteration is unlikely to move
	// the recommendation by more than a small relative amount.
	IsConverged() bool
	// IsDoomed reports whether no load in the controller's search range
	// can satisfy the configured thresholds, and if so why.
	IsDoomed() (reason string, doomed bool)
	// UpdateAndRecompute folds one benchmark's result into the
	// controller's state and recomputes its next recommendation.
	UpdateAndRecompute(result model.BenchmarkResult)
}

// InputVariableSetter applies a scalar numeric recommendation to a traffic
// spec (C5).
type InputVariableSetter interface {
	Set(spec *model.TrafficSpec, value float64) *status.Status
}

// MetricsProviderFactory constructs MetricsProvider instances from a
// PluginSpec's opaque config.
type MetricsProviderFactory interface {
	Name() string
	EmptyConfig() interface{}
	ValidateConfig(config map[string]interface{}) *status.Status
	Create(config map[string]interface{}) (MetricsProvider, *status.Status)
}

// ScoringFunctionFactory constructs ScoringFunction instances.
type ScoringFunctionFactory interface {
	Name() string
	EmptyConfig() interface{}
	ValidateConfig(config map[string]interface{}) *status.Status
	Create(config map[string]interface{}) (ScoringFunction, *status.Status)
}

// StepControllerFactory constructs StepController instances. Unlike the
// other three kinds, creation also takes the session's traffic template,
// since the controller owns cloning it on every GetCurrentTrafficSpec call.
type StepControllerFactory interface {
	Name() string
	EmptyConfig() interface{}
	ValidateConfig(config map[string]interface{}) *status.Status
	Create(config map[string]interface{}, trafficTemplate model.TrafficSpec) (StepController, *status.Status)
}

// InputVariableSetterFactory constructs InputVariableSetter instances.
type InputVariableSetterFactory interface {
	Name() string
	EmptyConfig() interface{}
	ValidateConfig(config map[string]interface{}) *status.Status
	Create(config map[string]interface{}) (InputVariableSetter, *status.Status)
}
