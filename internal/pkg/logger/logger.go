package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the service logger. JSON to stderr in production, console
// output when APP_ENV=dev.
func New(appEnv, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "chapterfox").Logger()

	if appEnv == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// For returns a child logger tagged with the owning service name.
func For(base zerolog.Logger, service string) zerolog.Logger {
	return base.With().Str("service", service).Logger()
}
