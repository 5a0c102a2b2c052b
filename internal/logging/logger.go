// Logger construction shared by the GUI and the command line
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"image-transform-pipeline/internal/config"
)

// New builds the application logger. Debug mode forces debug level and
// colored text output; otherwise level and format come from cfg. When
// cfg.File is set, entries are also written to a rotating file.
// The returned closer releases the file sink.
func New(cfg config.LogConfig, debugMode bool, stdout io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(level)
		logger.SetFormatter(formatter(cfg.Format))
	}

	var closer io.Closer = nopCloser{}
	out := stdout
	if out == nil {
		out = os.Stdout
	}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		out = io.MultiWriter(out, file)
		closer = file
	}
	logger.SetOutput(out)

	logger.Debug("Debug logging enabled")
	return logger, closer, nil
}

func formatter(format string) logrus.Formatter {
	if format == "text" {
		return &logrus.TextFormatter{
			FullTimestamp: true,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
