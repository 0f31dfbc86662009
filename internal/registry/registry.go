package registry

import (
	"sync"

	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/status"
)

var (
	mu                sync.RWMutex
	metricsProviders  = map[string]MetricsProviderFactory{}
	scoringFunctions  = map[string]ScoringFunctionFactory{}
	stepControllers   = map[string]StepControllerFactory{}
	inputVarSetters   = map[string]InputVariableSetterFactory{}
)

// RegisterMetricsProviderFactory adds f under f.Name() to the metrics
// provider namespace. Intended to be called from a plugin package's
// init(), mirroring the teacher's plugin self-registration pattern.
func RegisterMetricsProviderFactory(f MetricsProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	metricsProviders[f.Name()] = f
}

// RegisterScoringFunctionFactory adds f under f.Name() to the scoring
// function namespace.
func RegisterScoringFunctionFactory(f ScoringFunctionFactory) {
	mu.Lock()
	defer mu.Unlock()
	scoringFunctions[f.Name()] = f
}

// RegisterStepControllerFactory adds f under f.Name() to the step
// controller namespace.
func RegisterStepControllerFactory(f StepControllerFactory) {
	mu.Lock()
	defer mu.Unlock()
	stepControllers[f.Name()] = f
}

// RegisterInputVariableSetterFactory adds f under f.Name() to the input
// variable setter namespace.
func RegisterInputVariableSetterFactory(f InputVariableSetterFactory) {
	mu.Lock()
	defer mu.Unlock()
	inputVarSetters[f.Name()] = f
}

// LoadMetricsProvider validates spec.Config against the named factory's
// rules and, on success, constructs the provider. Mirrors the original
// implementation's LoadMetricsPlugin validate-then-create sequence: a
// plugin is never constructed with a config that failed validation.
func LoadMetricsProvider(spec model.PluginSpec) (MetricsProvider, *status.Status) {
	mu.RLock()
	f, ok := metricsProviders[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin: no metrics provider registered under name %q", spec.PluginName)
	}
	if st := f.ValidateConfig(spec.Config); !st.Ok() {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin %q: %s", spec.PluginName, st.Message)
	}
	return f.Create(spec.Config)
}

// LoadScoringFunction validates and constructs a ScoringFunction.
func LoadScoringFunction(spec model.PluginSpec) (ScoringFunction, *status.Status) {
	mu.RLock()
	f, ok := scoringFunctions[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin: no scoring function registered under name %q", spec.PluginName)
	}
	if st := f.ValidateConfig(spec.Config); !st.Ok() {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin %q: %s", spec.PluginName, st.Message)
	}
	return f.Create(spec.Config)
}

// LoadStepController validates and constructs a StepController, handing it
// a clone source for the session's traffic template.
func LoadStepController(spec model.PluginSpec, trafficTemplate model.TrafficSpec) (StepController, *status.Status) {
	mu.RLock()
	f, ok := stepControllers[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin: no step controller registered under name %q", spec.PluginName)
	}
	if st := f.ValidateConfig(spec.Config); !st.Ok() {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin %q: %s", spec.PluginName, st.Message)
	}
	return f.Create(spec.Config, trafficTemplate)
}

// LoadInputVariableSetter validates and constructs an InputVariableSetter.
func LoadInputVariableSetter(spec model.PluginSpec) (InputVariableSetter, *status.Status) {
	mu.RLock()
	f, ok := inputVarSetters[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin: no input variable setter registered under name %q", spec.PluginName)
	}
	if st := f.ValidateConfig(spec.Config); !st.Ok() {
		return nil, status.Newf(status.InvalidArgument,
			"could not load plugin %q: %s", spec.PluginName, st.Message)
	}
	return f.Create(spec.Config)
}

// ValidateMetricsProviderConfig runs a metrics provider factory's
// validate_config without constructing an instance, for the orchestrator's
// structural validation pass (Phase 1), which must not instantiate any
// plugin before every spec has been checked.
func ValidateMetricsProviderConfig(spec model.PluginSpec) *status.Status {
	mu.RLock()
	f, ok := metricsProviders[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return status.Newf(status.InvalidArgument,
			"could not load plugin: no metrics provider registered under name %q", spec.PluginName)
	}
	return f.ValidateConfig(spec.Config)
}

// ValidateScoringFunctionConfig runs a scoring function factory's
// validate_config without constructing an instance.
func ValidateScoringFunctionConfig(spec model.PluginSpec) *status.Status {
	mu.RLock()
	f, ok := scoringFunctions[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return status.Newf(status.InvalidArgument,
			"could not load plugin: no scoring function registered under name %q", spec.PluginName)
	}
	return f.ValidateConfig(spec.Config)
}

// ValidateStepControllerConfig runs a step controller factory's
// validate_config without constructing an instance.
func ValidateStepControllerConfig(spec model.PluginSpec) *status.Status {
	mu.RLock()
	f, ok := stepControllers[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return status.Newf(status.InvalidArgument,
			"could not load plugin: no step controller registered under name %q", spec.PluginName)
	}
	return f.ValidateConfig(spec.Config)
}

// ValidateInputVariableSetterConfig runs an input variable setter
// factory's validate_config without constructing an instance.
func ValidateInputVariableSetterConfig(spec model.PluginSpec) *status.Status {
	mu.RLock()
	f, ok := inputVarSetters[spec.PluginName]
	mu.RUnlock()
	if !ok {
		return status.Newf(status.InvalidArgument,
			"could not load plugin: no input variable setter registered under name %q", spec.PluginName)
	}
	return f.ValidateConfig(spec.Config)
}

// KnownMetricsPluginNames returns every registered metrics provider name,
// in no particular order. It lists registered factories, not the providers
// a particular session declares.
func KnownMetricsPluginNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(metricsProviders))
	for name := range metricsProviders {
		names = append(names, name)
	}
	return names
}

// ResetForTest clears every namespace. Exported for test suites that
// re-register a fixed set of fakes per test and need a clean slate.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	metricsProviders = map[string]MetricsProviderFactory{}
	scoringFunctions = map[string]ScoringFunctionFactory{}
	stepControllers = map[string]StepControllerFactory{}
	inputVarSetters = map[string]InputVariableSetterFactory{}
}
