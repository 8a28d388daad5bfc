// Package zerologadapter lets a zerolog.Logger serve as sqlengine.Logger.
package zerologadapter

import (
	"github.com/rs/zerolog"
)

// Logger adapts a zerolog.Logger to the slog-style Logger interface of the sqlengine package.
// Variadic args are interpreted as alternating key-value pairs.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new Logger around the given zerolog.Logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(args).Msg(msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(args).Msg(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}
