// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel `toml:"level"`

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool `toml:"pretty"`

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer `toml:"-"`

	// RunID, when set, is attached to every entry as run_id.
	RunID string `toml:"-"`
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.RunID != "" {
		ctx = ctx.Str("run_id", cfg.RunID)
	}
	logger := ctx.Logger()

	log.Logger = logger

	return logger
}

// ParseLevel validates a level name.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// parseLevel converts LogLevel to zerolog.Level, defaulting to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache hits and misses
//   - Per-division page counts
//   - Dropped sub-records with their missing field path
//   - Objects written to storage
//
// Info: Normal operation events
//   - Input list sizes and job start
//   - Quota cooldowns with the number of entries collected so far
//   - Checkpoints and final tables written (path, rows)
//   - Job summary
//
// Warn: Conditions that drop data but keep the job running
//   - Item skipped after a non-success response (reason is the upstream message)
//   - Division stopped early
//   - Cache errors (request goes to the API)
//   - Champion lookup unavailable
//
// Error: Conditions requiring attention
//   - Checkpoint or raw archive write failed
//   - Fatal job errors (missing input table, invalid range)
//
// Context Fields:
//   - run_id: One per CLI invocation
//   - component: Emitting package
//   - job: entries, accounts, merge, history, matches
//   - index: Position of the item in the job's input list
//   - page: Failed page (1-based)
//   - endpoint: Request route without identifiers
//   - status_code: HTTP status code
//   - reason: Upstream status.message of a failed request
//   - path: Location of a written table
