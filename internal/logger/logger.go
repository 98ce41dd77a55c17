package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrUnknownFormat = errors.New("unknown log format")

type Config struct {
	Level  string
	Format string
}

// PrepareLogger configures the standard logrus logger. Empty values keep WARN level and text format.
func PrepareLogger(config Config) error {
	return prepare(log.StandardLogger(), config, os.Stdout)
}

func prepare(l *log.Logger, config Config, out io.Writer) error {
	levelName := config.Level
	if levelName == "" {
		levelName = "WARN"
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", config.Level, err)
	}

	var formatter log.Formatter
	switch strings.ToLower(config.Format) {
	case "", "text":
		formatter = &log.TextFormatter{}
	case "json":
		formatter = &log.JSONFormatter{}
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, config.Format)
	}

	l.SetLevel(level)
	l.SetFormatter(formatter)
	l.SetOutput(out)
	return nil
}
