// Package model holds the opaque typed records the adaptive load
// controller passes between components: traffic specifications, benchmark
// results, metric evaluations, and the top-level session spec/output pair.
//
// In the system this was distilled from, these records are protobuf
// messages with google.protobuf.Any-typed plugin configs (see
// _examples/original_source/source/adaptive_load). This repository keeps
// the same shape — a typed envelope plus an opaque per-plugin config blob —
// but represents the blob as a YAML-decodable map instead of an Any, and
// the records themselves as plain Go structs.
package model

import (
	"maps"
	"time"

	"github.com/nighthawk/adaptive-load/internal/status"
)

// TrafficSpec is the traffic specification handed to the load generator.
// RequestsPerSecond is the one scalar field the reference InputVariableSetter
// (C5) mutates; Duration and OpenLoop are owned exclusively by the
// orchestrator and the dispatch client (§3 invariant 4) and must never be
// preset on a session's traffic template.
type TrafficSpec struct {
	RequestsPerSecond uint32            `yaml:"requests_per_second" json:"requests_per_second"`
	Duration          *Duration         `yaml:"duration,omitempty" json:"duration,omitempty"`
	OpenLoop          *bool             `yaml:"open_loop,omitempty" json:"open_loop,omitempty"`
	Headers           map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	// Extra carries any load-generator-specific fields this controller
	// does not interpret. Treated as fully opaque and passed through.
	Extra map[string]interface{} `yaml:",inline" json:"-"`
}

// Clone returns a deep copy, so step controllers and the dispatch client
// can each apply their own mutations (input variable, duration, open_loop)
// without disturbing the stored template.
func (t TrafficSpec) Clone() TrafficSpec {
	clone := t
	if t.Duration != nil {
		d := *t.Duration
		clone.Duration = &d
	}
	if t.OpenLoop != nil {
		b := *t.OpenLoop
		clone.OpenLoop = &b
	}
	if t.Headers != nil {
		clone.Headers = maps.Clone(t.Headers)
	}
	if t.Extra != nil {
		clone.Extra = maps.Clone(t.Extra)
	}
	return clone
}

// LatencyStats mirrors the request_to_response latency statistic the load
// generator reports for a benchmark: min/mean/max and population stddev.
type LatencyStats struct {
	Min    time.Duration
	Mean   time.Duration
	Max    time.Duration
	PStdev time.Duration
}

// RawBenchmarkOutput is the raw record the load generator returns for one
// benchmark execution, before any metrics-provider or scoring evaluation.
// ErrorDetail is set when the generator reported a transport-layer failure
// instead of a real measurement (§4.7 step 4, §4.6 step 1).
type RawBenchmarkOutput struct {
	TrafficSpec       TrafficSpec
	ActualDuration    time.Duration
	UpstreamRqTotal   int64
	ResponseCount2xx  int64
	RequestToResponse LatencyStats
	ErrorDetail       *status.Status
}

// MetricEvaluation is one scored (or informational) measurement taken
// after a benchmark. Weight == 0 marks an informational metric that does
// not count toward convergence (§3).
type MetricEvaluation struct {
	MetricID       string
	MetricValue    float64
	Weight         float64
	ThresholdScore float64
}

// BenchmarkResult is one execution of the load generator: the raw output,
// the derived metric evaluations, and an overall status for the iteration.
type BenchmarkResult struct {
	RawOutput         RawBenchmarkOutput
	MetricEvaluations []MetricEvaluation
	Status            status.Status
}

// PluginSpec names a registered factory plus its opaque, factory-specific
// configuration. Config is resolved by the named factory's ValidateConfig
// and Create (see internal/registry); the controller core never interprets
// its contents.
type PluginSpec struct {
	PluginName string                 `yaml:"plugin_name"`
	Config     map[string]interface{} `yaml:"config,omitempty"`
}

// MetricSpec names one metric to collect from one metrics-provider plugin.
type MetricSpec struct {
	MetricName        string `yaml:"metric_name"`
	MetricsPluginName string `yaml:"metrics_plugin_name"`
}

// ThresholdSpec pairs a weight with the scoring function plugin used to
// score a metric against its threshold. Weight is a pointer so the
// orchestrator can tell "unset" (default to 1.0) apart from an explicit 0.
type ThresholdSpec struct {
	Weight          *float64   `yaml:"weight,omitempty"`
	ScoringFunction PluginSpec `yaml:"scoring_function"`
}

// MetricThreshold is one scored-metric declaration: the metric to collect
// and the threshold it is scored against.
type MetricThreshold struct {
	Metric    MetricSpec    `yaml:"metric_spec"`
	Threshold ThresholdSpec `yaml:"threshold_spec"`
}

// ReportingPeriod is the wallclock window a benchmark was actively sending
// load, passed to metrics providers so they can window external queries.
type ReportingPeriod struct {
	Start    time.Time
	Duration time.Duration
}

// SessionSpec is the immutable, top-level configuration for one adaptive
// load session (§3). Zero values for the four duration fields mean
// "use the documented default"; Phase 1 validation (internal/orchestrator)
// fills them in before the session ever runs.
type SessionSpec struct {
	TrafficTemplate      TrafficSpec       `yaml:"traffic_template"`
	StepController       PluginSpec        `yaml:"step_controller"`
	MetricsProviders     []PluginSpec      `yaml:"metrics_providers,omitempty"`
	MetricThresholds     []MetricThreshold `yaml:"metric_thresholds,omitempty"`
	InformationalMetrics []MetricSpec      `yaml:"informational_metrics,omitempty"`
	MeasuringPeriod      Duration          `yaml:"measuring_period,omitempty"`
	ConvergenceDeadline  Duration          `yaml:"convergence_deadline,omitempty"`
	TestingStageDuration Duration          `yaml:"testing_stage_duration,omitempty"`
	BenchmarkCooldown    Duration          `yaml:"benchmark_cooldown,omitempty"`
}

// SessionOutput is the final, append-only record of one session: every
// adjusting-stage benchmark, the optional testing-stage benchmark, the
// resolved (default-filled) spec, and the terminal status.
type SessionOutput struct {
	// SessionID correlates this output with the orchestrator's log lines
	// for the same session; empty until the orchestrator assigns one after
	// Phase 1 validation and Phase 2 plugin instantiation both succeed.
	SessionID             string
	AdjustingStageResults []BenchmarkResult
	TestingStageResult    *BenchmarkResult
	ResolvedSpec          SessionSpec
	Status                status.Status
}
