// Package logging builds the process logger and adapts it for gorm.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a zerolog logger writing to stdout. format "console" selects
// human readable output, anything else JSON.
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// gormWriter forwards gorm's formatted log lines to zerolog.
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewGormLogger logs slow queries and errors through logger. Debug level
// also logs every statement.
func NewGormLogger(logger zerolog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}
	return gormlogger.New(
		gormWriter{logger: logger.With().Str("component", "gorm").Logger()},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
