// Package orchestrator implements the session orchestrator (C8): the
// single top-level control driver that sequences plugin validation,
// instantiation, the adjusting loop, and the testing stage into one
// SessionOutput.
//
// Grounded on spec §4.8's five phases, which mirror
// _examples/original_source/source/adaptive_load/adaptive_load_controller_impl.cc's
// PerformAdaptiveLoadSession top-level loop; the cancellation/deadline
// handling follows the teacher's use of context.Context to bound blocking
// calls (internal/websocket's readPump timeouts, internal/services'
// context-scoped calls).
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nighthawk/adaptive-load/internal/evaluator"
	"github.com/nighthawk/adaptive-load/internal/logging"
	"github.com/nighthawk/adaptive-load/internal/metrics"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/registry"
	"github.com/nighthawk/adaptive-load/internal/status"
)

const (
	defaultMeasuringPeriod      = 10 * time.Second
	defaultConvergenceDeadline  = 300 * time.Second
	defaultTestingStageDuration = 30 * time.Second
	defaultBenchmarkCooldown    = 0 * time.Second
)

// Dispatcher is the benchmark dispatch client's interface (C7), as
// consumed by the orchestrator. internal/dispatch.Client implements it.
type Dispatcher interface {
	RunBenchmark(ctx context.Context, spec model.TrafficSpec, duration time.Duration) (model.RawBenchmarkOutput, *status.Status)
}

// RunSession executes spec.8's five phases to completion and returns the
// resulting SessionOutput. It never panics: any plugin panic is recovered
// at this boundary and converted into a terminal Internal status.
func RunSession(ctx context.Context, spec model.SessionSpec, clock Clock, dispatcher Dispatcher) (output model.SessionOutput) {
	defer func() {
		if r := recover(); r != nil {
			output.Status = *status.Newf(status.Internal, "recovered from panic in session orchestrator: %v", r)
		}
	}()

	log := logging.Orchestrator()

	resolved, st := resolveAndValidate(spec)
	if !st.Ok() {
		return model.SessionOutput{ResolvedSpec: resolved, Status: *st}
	}

	providers, stepController, st := instantiatePlugins(resolved)
	if !st.Ok() {
		return model.SessionOutput{ResolvedSpec: resolved, Status: *st}
	}

	output.ResolvedSpec = resolved
	output.SessionID = uuid.NewString()
	log.Info().Str("session_id", output.SessionID).Msg("session starting")

	measuringPeriod := resolved.MeasuringPeriod.AsDuration()
	convergenceDeadline := resolved.ConvergenceDeadline.AsDuration()
	benchmarkCooldown := resolved.BenchmarkCooldown.AsDuration()

	startTime := clock.Now()

	for {
		if ctx.Err() != nil {
			output.Status = *status.New(status.Cancelled, "session cancelled")
			return output
		}
		if clock.Now().Sub(startTime) > convergenceDeadline {
			output.Status = *status.New(status.DeadlineExceeded, "failed to converge before deadline")
			return output
		}

		trafficSpec, st := stepController.GetCurrentTrafficSpec()
		if !st.Ok() {
			failed := model.BenchmarkResult{Status: *st}
			output.AdjustingStageResults = append(output.AdjustingStageResults, failed)
			stepController.UpdateAndRecompute(allFailResult())
			if reason, doomed := stepController.IsDoomed(); doomed {
				output.Status = *status.Newf(status.FailedPrecondition,
					"step controller determined it can never converge: %s", reason)
				return output
			}
			continue
		}

		if err := clock.Sleep(ctx, benchmarkCooldown); err != nil {
			output.Status = *status.New(status.Cancelled, "session cancelled during benchmark cooldown")
			return output
		}

		reportingStart := clock.Now()
		raw, dispatchStatus := dispatcher.RunBenchmark(ctx, trafficSpec, measuringPeriod)
		if !dispatchStatus.Ok() {
			raw.ErrorDetail = dispatchStatus
		}
		period := model.ReportingPeriod{Start: reportingStart, Duration: measuringPeriod}

		result, evalStatus := evaluator.AnalyzeBenchmark(ctx, raw, resolved, providers, period)
		output.AdjustingStageResults = append(output.AdjustingStageResults, result)

		log.Info().
			Int("iteration", len(output.AdjustingStageResults)).
			Bool("ok", evalStatus.Ok()).
			Msg("adjusting stage iteration complete")

		stepController.UpdateAndRecompute(result)

		if reason, doomed := stepController.IsDoomed(); doomed {
			output.Status = *status.Newf(status.FailedPrecondition,
				"step controller determined it can never converge: %s", reason)
			return output
		}
		if stepController.IsConverged() {
			break
		}
	}

	testingDuration := resolved.TestingStageDuration.AsDuration()
	finalSpec, st := stepController.GetCurrentTrafficSpec()
	if !st.Ok() {
		output.Status = *status.Newf(status.Internal, "could not obtain final traffic spec: %s", st.Message)
		return output
	}

	reportingStart := clock.Now()
	raw, dispatchStatus := dispatcher.RunBenchmark(ctx, finalSpec, testingDuration)
	if !dispatchStatus.Ok() {
		raw.ErrorDetail = dispatchStatus
	}
	period := model.ReportingPeriod{Start: reportingStart, Duration: testingDuration}

	testingResult, evalStatus := evaluator.AnalyzeBenchmark(ctx, raw, resolved, providers, period)
	output.TestingStageResult = &testingResult
	if !evalStatus.Ok() {
		output.Status = *evalStatus
		return output
	}
	output.Status = *status.Success()
	return output
}

// allFailResult synthesizes a benchmark result whose scored metrics all
// fail, used to push a doomed-producing GetCurrentTrafficSpec failure
// through UpdateAndRecompute so the reference step controller's own
// doom/convergence bookkeeping still advances.
func allFailResult() model.BenchmarkResult {
	return model.BenchmarkResult{
		MetricEvaluations: []model.MetricEvaluation{
			{MetricID: "orchestrator/input-setter-failure", Weight: 1, ThresholdScore: -1},
		},
	}
}

func resolveAndValidate(spec model.SessionSpec) (model.SessionSpec, *status.Status) {
	resolved := spec

	if resolved.MeasuringPeriod.AsDuration() == 0 {
		resolved.MeasuringPeriod = model.Duration(defaultMeasuringPeriod)
	}
	if resolved.ConvergenceDeadline.AsDuration() == 0 {
		resolved.ConvergenceDeadline = model.Duration(defaultConvergenceDeadline)
	}
	if resolved.TestingStageDuration.AsDuration() == 0 {
		resolved.TestingStageDuration = model.Duration(defaultTestingStageDuration)
	}
	// BenchmarkCooldown's documented default (0s) equals its zero value,
	// so there is nothing to fill in.

	for i := range resolved.MetricThresholds {
		if resolved.MetricThresholds[i].Metric.MetricsPluginName == "" {
			resolved.MetricThresholds[i].Metric.MetricsPluginName = metrics.BuiltinPluginName
		}
		if resolved.MetricThresholds[i].Threshold.Weight == nil {
			one := 1.0
			resolved.MetricThresholds[i].Threshold.Weight = &one
		}
	}
	for i := range resolved.InformationalMetrics {
		if resolved.InformationalMetrics[i].MetricsPluginName == "" {
			resolved.InformationalMetrics[i].MetricsPluginName = metrics.BuiltinPluginName
		}
	}

	openLoop := true
	resolved.TrafficTemplate.OpenLoop = &openLoop

	var errs []string

	if spec.TrafficTemplate.Duration != nil {
		errs = append(errs, "traffic_template must not preset duration")
	}
	if spec.TrafficTemplate.OpenLoop != nil {
		errs = append(errs, "traffic_template must not preset open_loop")
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"measuring_period", resolved.MeasuringPeriod.AsDuration()},
		{"convergence_deadline", resolved.ConvergenceDeadline.AsDuration()},
		{"testing_stage_duration", resolved.TestingStageDuration.AsDuration()},
		{"benchmark_cooldown", resolved.BenchmarkCooldown.AsDuration()},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be non-negative", d.name))
		}
	}

	for _, mt := range resolved.MetricThresholds {
		if mt.Threshold.Weight != nil && *mt.Threshold.Weight < 0 {
			errs = append(errs, fmt.Sprintf(
				"metric %q: weight must be non-negative", mt.Metric.MetricName))
		}
	}

	declaredProviders := map[string]bool{metrics.BuiltinPluginName: true}
	for _, p := range resolved.MetricsProviders {
		declaredProviders[p.PluginName] = true
	}
	for _, mt := range resolved.MetricThresholds {
		if !declaredProviders[mt.Metric.MetricsPluginName] {
			errs = append(errs, fmt.Sprintf(
				"metric %q references undeclared metrics provider %q",
				mt.Metric.MetricName, mt.Metric.MetricsPluginName))
		}
	}
	for _, m := range resolved.InformationalMetrics {
		if !declaredProviders[m.MetricsPluginName] {
			errs = append(errs, fmt.Sprintf(
				"metric %q references undeclared metrics provider %q",
				m.MetricName, m.MetricsPluginName))
		}
	}

	if st := registry.ValidateStepControllerConfig(resolved.StepController); !st.Ok() {
		errs = append(errs, st.Message)
	}
	for _, p := range resolved.MetricsProviders {
		if st := registry.ValidateMetricsProviderConfig(p); !st.Ok() {
			errs = append(errs, st.Message)
		}
	}
	for _, mt := range resolved.MetricThresholds {
		if st := registry.ValidateScoringFunctionConfig(mt.Threshold.ScoringFunction); !st.Ok() {
			errs = append(errs, st.Message)
		}
	}

	if len(errs) > 0 {
		return resolved, status.JoinMessages(status.InvalidArgument, errs...)
	}
	return resolved, status.Success()
}

func instantiatePlugins(spec model.SessionSpec) (map[string]registry.MetricsProvider, registry.StepController, *status.Status) {
	providers := make(map[string]registry.MetricsProvider, len(spec.MetricsProviders))
	var errs []string

	for _, p := range spec.MetricsProviders {
		provider, st := registry.LoadMetricsProvider(p)
		if !st.Ok() {
			errs = append(errs, st.Message)
			continue
		}
		providers[p.PluginName] = provider
	}

	stepController, st := registry.LoadStepController(spec.StepController, spec.TrafficTemplate)
	if !st.Ok() {
		errs = append(errs, st.Message)
	}

	if len(errs) > 0 {
		return nil, nil, status.JoinMessages(status.InvalidArgument, errs...)
	}

	// Every declared metrics_plugin_name on a metric spec was checked
	// against the declared-provider set during validation; now that the
	// providers are live, also confirm each references a name that
	// provider actually supports.
	for _, pairs := range [][]model.MetricSpec{metricSpecsOf(spec.MetricThresholds), spec.InformationalMetrics} {
		for _, m := range pairs {
			if m.MetricsPluginName == metrics.BuiltinPluginName {
				if !contains(metrics.SupportedNames(), m.MetricName) {
					errs = append(errs, fmt.Sprintf(
						"metric %q is not supported by built-in metrics provider", m.MetricName))
				}
				continue
			}
			provider := providers[m.MetricsPluginName]
			if !contains(provider.SupportedMetricNames(), m.MetricName) {
				errs = append(errs, fmt.Sprintf(
					"metric %q is not supported by metrics provider %q", m.MetricName, m.MetricsPluginName))
			}
		}
	}
	if len(errs) > 0 {
		return nil, nil, status.JoinMessages(status.InvalidArgument, errs...)
	}

	return providers, stepController, status.Success()
}

func metricSpecsOf(thresholds []model.MetricThreshold) []model.MetricSpec {
	specs := make([]model.MetricSpec, len(thresholds))
	for i, t := range thresholds {
		specs[i] = t.Metric
	}
	return specs
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
