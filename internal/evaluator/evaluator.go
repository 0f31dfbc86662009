// Package evaluator implements the metrics evaluator (C6): turning a
// session's declared metric/threshold specs plus one benchmark's raw
// output into a fully scored BenchmarkResult.
//
// Grounded on
// _examples/original_source/source/adaptive_load/metrics_evaluator_impl.cc's
// ExtractMetricSpecs and AnalyzeNighthawkBenchmark.
package evaluator

import (
	"context"
	"fmt"

	"github.com/nighthawk/adaptive-load/internal/metrics"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

// SpecPair is one metric spec paired with its threshold, or nil for an
// informational metric.
type SpecPair struct {
	Metric    model.MetricSpec
	Threshold *model.ThresholdSpec
}

// ExtractMetricSpecs returns every metric this session declares, scored
// specs first in declaration order, followed by informational specs, also
// in declaration order. The combined order is the order AnalyzeBenchmark's
// output preserves.
func ExtractMetricSpecs(spec model.SessionSpec) []SpecPair {
	pairs := make([]SpecPair, 0, len(spec.MetricThresholds)+len(spec.InformationalMetrics))
	for _, mt := range spec.MetricThresholds {
		threshold := mt.Threshold
		pairs = append(pairs, SpecPair{Metric: mt.Metric, Threshold: &threshold})
	}
	for _, m := range spec.InformationalMetrics {
		pairs = append(pairs, SpecPair{Metric: m, Threshold: nil})
	}
	return pairs
}

// AnalyzeBenchmark scores one benchmark's raw output against a session's
// metric declarations. providers must already contain every
// MetricsProvider the session's metrics_providers list instantiated,
// keyed by plugin name; AnalyzeBenchmark adds the built-in extractor under
// metrics.BuiltinPluginName itself, so callers must not set that key.
func AnalyzeBenchmark(
	ctx context.Context,
	raw model.RawBenchmarkOutput,
	spec model.SessionSpec,
	providers map[string]registry.MetricsProvider,
	period model.ReportingPeriod,
) (model.BenchmarkResult, *status.Status) {
	if raw.ErrorDetail != nil && !raw.ErrorDetail.Ok() {
		return model.BenchmarkResult{RawOutput: raw, Status: *raw.ErrorDetail}, raw.ErrorDetail
	}

	allProviders := make(map[string]registry.MetricsProvider, len(providers)+1)
	for name, p := range providers {
		allProviders[name] = p
	}
	allProviders[metrics.BuiltinPluginName] = metrics.NewBuiltin(raw)

	pairs := ExtractMetricSpecs(spec)
	evaluations := make([]model.MetricEvaluation, 0, len(pairs))
	var errMessages []string

	for _, pair := range pairs {
		provider, ok := allProviders[pair.Metric.MetricsPluginName]
		if !ok {
			errMessages = append(errMessages, fmt.Sprintf(
				"metric %q: no metrics provider registered under plugin name %q",
				pair.Metric.MetricName, pair.Metric.MetricsPluginName))
			continue
		}

		value, st := provider.GetMetricValue(ctx, pair.Metric.MetricName, period)
		if !st.Ok() {
			errMessages = append(errMessages, fmt.Sprintf(
				"metric %q/%q: %s", pair.Metric.MetricsPluginName, pair.Metric.MetricName, st.Message))
			continue
		}

		metricID := pair.Metric.MetricsPluginName + "/" + pair.Metric.MetricName

		if pair.Threshold == nil {
			evaluations = append(evaluations, model.MetricEvaluation{
				MetricID:    metricID,
				MetricValue: value,
			})
			continue
		}

		weight := 1.0
		if pair.Threshold.Weight != nil {
			weight = *pair.Threshold.Weight
		}

		scoringFn, st := registry.LoadScoringFunction(pair.Threshold.ScoringFunction)
		if !st.Ok() {
			errMessages = append(errMessages, fmt.Sprintf(
				"metric %q: could not load scoring function: %s", metricID, st.Message))
			continue
		}

		evaluations = append(evaluations, model.MetricEvaluation{
			MetricID:       metricID,
			MetricValue:    value,
			Weight:         weight,
			ThresholdScore: scoringFn.Evaluate(value),
		})
	}

	if len(errMessages) > 0 {
		st := status.JoinMessages(status.Internal, errMessages...)
		return model.BenchmarkResult{RawOutput: raw, Status: *st}, st
	}

	result := model.BenchmarkResult{
		RawOutput:         raw,
		MetricEvaluations: evaluations,
		Status:            *status.Success(),
	}
	return result, status.Success()
}
