package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string `doc:"log from debug, info, warn or error"`
	File       string `doc:"append logs to file"`
	Format     string `doc:"format logs as text or json"             default:"text"`
	MaxSize    int    `doc:"megabytes a log file grows to before rotating" default:"100"`
	MaxBackups int    `doc:"rotated log files to keep, 0 keeps them all"   default:"3"`
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

func New(options *Options) *slog.Logger {
	return NewWithStdout(options, os.Stdout)
}

// NewWithStdout is [New] writing to stdout instead of [os.Stdout]
// when no file is configured.
func NewWithStdout(options *Options, stdout io.Writer) *slog.Logger {
	level, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger := NewWithStdout(options, stdout)
		logger.Warn("could not parse logger level")
		return logger
	}
	opts := slog.HandlerOptions{Level: level}

	var output io.Writer
	switch options.File {
	case "", "-":
		output = stdout
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		output = &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.MaxSize,
			MaxBackups: options.MaxBackups,
		}
	}

	switch strings.ToLower(options.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(output, &opts))
	case "text":
		return slog.New(slog.NewTextHandler(output, &opts))
	default:
		options.Format = "text"
		logger := NewWithStdout(options, stdout)
		logger.Warn("could not parse logger format")
		return logger
	}
}
