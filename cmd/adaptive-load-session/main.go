// Command adaptive-load-session is a thin example runner for one adaptive
// load session. It is deliberately not a general CLI (flag parsing is an
// explicit non-goal of the controller core): it reads a session spec from
// a YAML file named by an environment variable and logs a one-line summary
// of the resulting report (status, message, iteration count, and whether a
// testing-stage result exists), mirroring the teacher's cmd/main.go style of env-var-driven
// configuration rather than a flag package.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	adaptiveload "github.com/nighthawk/adaptive-load"
	"github.com/nighthawk/adaptive-load/internal/logging"
	"github.com/nighthawk/adaptive-load/internal/model"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logging.Init(getEnv("LOG_LEVEL", "info"), getEnv("LOG_PRETTY", "true") == "true")
	log := logging.Orchestrator()

	specPath := getEnv("SESSION_SPEC_FILE", "./session.yaml")
	endpoint := getEnv("LOAD_GENERATOR_ENDPOINT", "ws://localhost:9000/benchmark")

	data, err := os.ReadFile(specPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", specPath).Msg("could not read session spec file")
	}

	var spec model.SessionSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		log.Fatal().Err(err).Msg("could not parse session spec")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		log.Warn().Msg("received interrupt, cancelling session")
		cancel()
	}()

	output := adaptiveload.RunAdaptiveLoadSession(ctx, spec, endpoint)

	log.Info().
		Str("status", output.Status.Code.String()).
		Str("message", output.Status.Message).
		Int("adjusting_iterations", len(output.AdjustingStageResults)).
		Bool("has_testing_result", output.TestingStageResult != nil).
		Msg("session complete")

	if output.Status.Code != 0 {
		os.Exit(1)
	}
}
