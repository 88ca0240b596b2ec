package logging

import (
	"io"
	"os"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"moodlist/config"
)

// Setup configures the global logrus logger. The returned closer flushes the
// rotating log file when one is configured.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	log.SetLevel(ParseLevel(cfg.Level))

	formatter := &nested.Formatter{
		TimestampFormat: time.RFC3339,
		FieldsOrder:     []string{"request_id", "method", "path", "status"},
		HideKeys:        false,
		NoColors:        cfg.HasFile(),
	}
	log.SetFormatter(formatter)

	if !cfg.HasFile() {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator, nil
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
