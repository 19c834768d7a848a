package util

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide console logger. Progress output goes to
// stderr so catalog lines printed to stdout stay machine-readable.
func NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
