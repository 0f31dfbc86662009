// Package logging provides the adaptive load controller's structured
// logger. It mirrors the teacher's internal/logger package: a package-level
// zerolog.Logger configured once via Init, and named component loggers
// built on top of it with With().Str("component", ...).
//
// Per spec §7, no error is ever surfaced only through a log line — all
// diagnostic content a caller needs lives in a returned Status or in the
// SessionOutput. These loggers exist purely for operational visibility
// into an in-progress session.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the global logger instance, configured by Init.
var Log zerolog.Logger

// Init sets up the global logger. level is parsed with zerolog.ParseLevel;
// an unrecognized level falls back to info. pretty selects a human-readable
// console writer (for local runs) over newline-delimited JSON (for
// production log collection).
func Init(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().
		Str("service", "adaptive-load-controller").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("logger initialized")
}

func component(name string) *zerolog.Logger {
	l := Log.With().Str("component", name).Logger()
	return &l
}

// Orchestrator returns the logger for the session orchestrator (C8).
func Orchestrator() *zerolog.Logger { return component("orchestrator") }

// Dispatch returns the logger for the benchmark dispatch client (C7).
func Dispatch() *zerolog.Logger { return component("dispatch") }

// Registry returns the logger for the plugin registry (C1).
func Registry() *zerolog.Logger { return component("registry") }

// Evaluator returns the logger for the metrics evaluator (C6).
func Evaluator() *zerolog.Logger { return component("evaluator") }

// StepController returns the logger for the reference step controller (C4).
func StepController() *zerolog.Logger { return component("step_controller") }
