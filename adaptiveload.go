// Package adaptiveload is the adaptive load controller's single exported
// entry point. It wires together the session orchestrator (C8), a
// websocket-backed benchmark dispatch client (C7), and the production
// clock, matching spec §6's "single function
// RunAdaptiveLoadSession(SessionSpec, load_generator_endpoint) ->
// SessionOutput" external interface.
//
// Importing this package registers every reference plugin (the built-in
// scoring functions, input variable setters, and the exponential-search
// step controller) via each plugin package's init().
package adaptiveload

import (
	"context"

	"github.com/nighthawk/adaptive-load/internal/dispatch"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/orchestrator"

	_ "github.com/nighthawk/adaptive-load/internal/inputsetter"
	_ "github.com/nighthawk/adaptive-load/internal/scoring"
	_ "github.com/nighthawk/adaptive-load/internal/stepcontroller"
)

// RunAdaptiveLoadSession runs one adaptive load session against the load
// generator reachable at loadGeneratorEndpoint (a ws:// or wss:// URL) and
// returns the completed SessionOutput. It blocks until the session
// terminates (converged, doomed, deadline exceeded, or cancelled via ctx).
func RunAdaptiveLoadSession(ctx context.Context, spec model.SessionSpec, loadGeneratorEndpoint string) model.SessionOutput {
	client := dispatch.NewClient(loadGeneratorEndpoint)
	return orchestrator.RunSession(ctx, spec, orchestrator.RealClock{}, client)
}
