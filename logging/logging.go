package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	once   sync.Once
)

func level() zerolog.Level {
	if os.Getenv("NO_DEBUG") != "" {
		return zerolog.InfoLevel
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if lvl, err := zerolog.ParseLevel(raw); err == nil {
			return lvl
		}
	}

	return zerolog.DebugLevel
}

func build(out io.Writer) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(console).Level(level()).With().Timestamp().Caller().Logger()
}

func Get() zerolog.Logger {
	once.Do(func() {
		logger = build(os.Stdout)
	})

	return logger
}

// Component returns the shared logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}
