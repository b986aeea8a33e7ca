// Package raffle is the root of a pooled-stake lottery running as a native
// smart contract on a local ledger.
//
// The package provides the global logger and the list of Prometheus collectors
// that components append to when they define metrics.
package raffle

import (
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// EnvLogLevel is the name of the environment variable to change the logging
// level.
const EnvLogLevel = "LLVL"

const defaultLevel = zerolog.InfoLevel

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance. By default, it only prints
// info level logs, but it can be changed through the environment variable
// LLVL or with SetLevel.
var Logger = zerolog.New(logout).Level(ParseLevel(os.Getenv(EnvLogLevel))).
	With().Timestamp().Logger().
	With().Caller().Logger()

// PromCollectors exposes the Prometheus collectors created by the components.
// The HTTP proxy registers them when it serves the metrics handler.
var PromCollectors []prometheus.Collector

// ParseLevel returns the zerolog level matching the string, "none" being an
// alias of the disabled level. It falls back to the info level for an empty or
// unknown value.
func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(value)
	if value == "none" {
		return zerolog.Disabled
	}

	lvl, err := zerolog.ParseLevel(value)
	if err != nil || lvl == zerolog.NoLevel {
		return defaultLevel
	}

	return lvl
}

// SetLevel changes the level of the global logger.
func SetLevel(value string) {
	Logger = Logger.Level(ParseLevel(value))
}
