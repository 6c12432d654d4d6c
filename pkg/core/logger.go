package core

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging for the framework. The abstraction allows
// swapping implementations; the default is zerolog-backed.
type Logger interface {
	Error(args ...any)
	Errorf(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
}

var logOnce sync.Once

// ConfigureLogging sets the global log level once. Empty level falls back to
// the LOG_LEVEL environment variable, then to info.
func ConfigureLogging(level string) {
	logOnce.Do(func() {
		parsed := zerolog.InfoLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		if level != "" {
			if p, err := zerolog.ParseLevel(level); err == nil {
				parsed = p
			}
		}
		zerolog.SetGlobalLevel(parsed)
		zerolog.TimeFieldFormat = time.RFC3339
	})
}

// NewDefaultLogger returns the default framework logger.
func NewDefaultLogger() Logger {
	return NewComponentLogger("core")
}

// NewComponentLogger returns a logger annotated with a component name.
func NewComponentLogger(component string) Logger {
	ConfigureLogging("")
	l := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "synapse").
		Str("component", component).
		Logger()
	return &zeroLogger{l: l}
}

type zeroLogger struct {
	l zerolog.Logger
}

func (z *zeroLogger) Error(args ...any) {
	z.l.Error().Msg(fmt.Sprint(args...))
}

func (z *zeroLogger) Errorf(format string, args ...any) {
	z.l.Error().Msgf(format, args...)
}

func (z *zeroLogger) Warn(args ...any) {
	z.l.Warn().Msg(fmt.Sprint(args...))
}

func (z *zeroLogger) Warnf(format string, args ...any) {
	z.l.Warn().Msgf(format, args...)
}

func (z *zeroLogger) Info(args ...any) {
	z.l.Info().Msg(fmt.Sprint(args...))
}

func (z *zeroLogger) Infof(format string, args ...any) {
	z.l.Info().Msgf(format, args...)
}

func (z *zeroLogger) Debug(args ...any) {
	z.l.Debug().Msg(fmt.Sprint(args...))
}

func (z *zeroLogger) Debugf(format string, args ...any) {
	z.l.Debug().Msgf(format, args...)
}
