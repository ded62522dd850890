package observability

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the global zerolog logger on stderr and returns it.
// Stdout is left to the printer.
func InitLogger(serviceName, env, level string) (zerolog.Logger, error) {
	logger, err := NewLogger(os.Stderr, serviceName, env, level)
	if err != nil {
		return zerolog.Nop(), err
	}
	log.Logger = logger
	return logger, nil
}

// NewLogger builds a logger: a console writer in development, JSON with
// timestamp and caller otherwise.
func NewLogger(w io.Writer, serviceName, env, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).
			Level(lvl).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger(), nil
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger(), nil
}
