// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// New returns the process logger, initializing it on first use. The level
// comes from HABITREMINDER_LOG_LEVEL (default info). Lines go to stderr and
// to a size-rotated file under the state directory; set
// HABITREMINDER_LOG_FILE=off to disable the file writer.
func New() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("HABITREMINDER_LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			TimestampFormat: "02 Jan 06 - 15:04:05",
			HideKeys:        false,
			FieldsOrder:     []string{"component", "habit"},
		})

		writers := []io.Writer{os.Stderr}
		if file := logFilePath(); file != "off" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   file,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    50,
				MaxAge:     14,
				MaxBackups: 3,
			})
		}
		logger.SetOutput(io.MultiWriter(writers...))
	})

	return logger
}

func logFilePath() string {
	if file := os.Getenv("HABITREMINDER_LOG_FILE"); file != "" {
		return file
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "off"
	}
	return filepath.Join(home, ".habitreminder", "habitreminder.log")
}

// Component returns a logger entry tagged for one subsystem.
func Component(name string) *logrus.Entry {
	return New().WithField("component", name)
}
