// Package logger builds the logrus logger the rest of the system receives
// by injection. No component reaches for a process-wide logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string // debug, info, warn, error; default info
	File       string // empty means stderr only
	MaxSizeMB  int    // rotate threshold, default 10
	MaxBackups int    // rotated files kept, default 3
}

func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize == 0 {
			maxSize = 10
		}
		maxBackups := cfg.MaxBackups
		if maxBackups == 0 {
			maxBackups = 3
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}

	return log
}
