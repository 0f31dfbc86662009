// Package metrics implements the built-in metrics extractor (C2): the
// fixed set of rate and latency-distribution metrics derivable from one
// RawBenchmarkOutput record without any external provider.
//
// It is grounded on
// _examples/original_source/source/adaptive_load/metrics_plugin_impl.h's
// NighthawkStatsEmulatedMetricsPlugin, which computes this same metric set
// directly from a benchmark's counters rather than querying an external
// stats backend. Unlike a registered MetricsProvider plugin, the builtin
// extractor is not configured through the registry: the evaluator (C6)
// constructs a fresh one per benchmark, over that benchmark's own output.
package metrics

import (
	"context"
	"math"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/status"
)

// BuiltinPluginName is the provider name the evaluator maps the Builtin
// extractor under, matching the original implementation's "nighthawk.builtin".
const BuiltinPluginName = "nighthawk.builtin"

var supportedNames = []string{
	"attempted-rps",
	"achieved-rps",
	"send-rate",
	"success-rate",
	"latency-ns-min",
	"latency-ns-mean",
	"latency-ns-max",
	"latency-ns-pstdev",
	"latency-ns-mean-plus-1stdev",
	"latency-ns-mean-plus-2stdev",
	"latency-ns-mean-plus-3stdev",
}

// SupportedNames returns the fixed set of names Builtin answers, in the
// table order documented for C2.
func SupportedNames() []string {
	out := make([]string, len(supportedNames))
	copy(out, supportedNames)
	return out
}

// Builtin is the built-in MetricsProvider over one benchmark's raw output.
type Builtin struct {
	raw model.RawBenchmarkOutput
}

// NewBuiltin constructs a Builtin extractor over raw.
func NewBuiltin(raw model.RawBenchmarkOutput) Builtin {
	return Builtin{raw: raw}
}

// SupportedMetricNames implements registry.MetricsProvider.
func (b Builtin) SupportedMetricNames() []string {
	return SupportedNames()
}

// GetMetricValue implements registry.MetricsProvider. period is accepted
// for interface conformance but unused: every builtin metric is derived
// entirely from the raw output it was constructed with.
func (b Builtin) GetMetricValue(ctx context.Context, name string, period model.ReportingPeriod) (float64, *status.Status) {
	switch name {
	case "attempted-rps":
		return float64(b.raw.TrafficSpec.RequestsPerSecond), status.Success()
	case "achieved-rps":
		return b.achievedRPS(), status.Success()
	case "send-rate":
		return divide(b.achievedRPS(), float64(b.raw.TrafficSpec.RequestsPerSecond)), status.Success()
	case "success-rate":
		return divide(float64(b.raw.ResponseCount2xx), float64(b.raw.UpstreamRqTotal)), status.Success()
	case "latency-ns-min":
		return float64(b.raw.RequestToResponse.Min.Nanoseconds()), status.Success()
	case "latency-ns-mean":
		return float64(b.raw.RequestToResponse.Mean.Nanoseconds()), status.Success()
	case "latency-ns-max":
		return float64(b.raw.RequestToResponse.Max.Nanoseconds()), status.Success()
	case "latency-ns-pstdev":
		return float64(b.raw.RequestToResponse.PStdev.Nanoseconds()), status.Success()
	case "latency-ns-mean-plus-1stdev":
		return b.meanPlusStdev(1), status.Success()
	case "latency-ns-mean-plus-2stdev":
		return b.meanPlusStdev(2), status.Success()
	case "latency-ns-mean-plus-3stdev":
		return b.meanPlusStdev(3), status.Success()
	default:
		return 0, status.Newf(status.NotFound, "unknown builtin metric %q", name)
	}
}

func (b Builtin) achievedRPS() float64 {
	seconds := b.raw.ActualDuration.Seconds()
	return divide(float64(b.raw.UpstreamRqTotal), seconds)
}

func (b Builtin) meanPlusStdev(n float64) float64 {
	mean := float64(b.raw.RequestToResponse.Mean.Nanoseconds())
	stdev := float64(b.raw.RequestToResponse.PStdev.Nanoseconds())
	return mean + n*stdev
}

// divide returns 0 for a zero denominator instead of NaN/Inf, matching
// the "division by zero yields 0.0 with OK status" rule.
func divide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}
