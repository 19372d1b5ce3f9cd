// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	Output     io.Writer // console destination, stderr when nil
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "luxury-tycoon", "logs", "tycoon.log"),
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger stored by WithLogger. ok is false when
// ctx carries none.
func FromContext(ctx context.Context) (logger zerolog.Logger, ok bool) {
	if ctx == nil {
		return zerolog.Nop(), false
	}
	logger, ok = ctx.Value(LoggerKey).(zerolog.Logger)
	if !ok {
		return zerolog.Nop(), false
	}
	return logger, true
}

// WithSession adds a session id to the logger context.
func WithSession(logger zerolog.Logger, sessionID string) zerolog.Logger {
	return logger.With().Str("session", sessionID).Logger()
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// LogAction logs an accepted action.
func LogAction(logger zerolog.Logger, kind string, version uint64, primary, premium string) {
	logger.Info().
		Str("event", "action").
		Str("action", kind).
		Uint64("version", version).
		Str("primary", primary).
		Str("premium", premium).
		Msg("Action applied")
}

// LogRejection logs an action the engine refused.
func LogRejection(logger zerolog.Logger, kind string, err error) {
	logger.Warn().
		Str("event", "rejection").
		Str("action", kind).
		Err(err).
		Msg("Action rejected")
}

// LogTick logs a price tick. Ticks are frequent, so they go to debug.
func LogTick(logger zerolog.Logger, version uint64, instruments int) {
	logger.Debug().
		Str("event", "tick").
		Uint64("version", version).
		Int("instruments", instruments).
		Msg("Prices advanced")
}

// LogSpin logs a daily spin outcome.
func LogSpin(logger zerolog.Logger, currency, amount, date string) {
	logger.Info().
		Str("event", "spin").
		Str("currency", currency).
		Str("amount", amount).
		Str("date", date).
		Msg("Daily spin resolved")
}

// LogUnlock logs an item the player can now buy.
func LogUnlock(logger zerolog.Logger, itemID, price, netWorth string) {
	logger.Info().
		Str("event", "unlock").
		Str("item", itemID).
		Str("price", price).
		Str("net_worth", netWorth).
		Msg("Item unlocked")
}

// LogRequest logs a served HTTP request.
func LogRequest(logger zerolog.Logger, method, path string, status int, duration time.Duration) {
	logger.Debug().
		Str("event", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("Request served")
}
