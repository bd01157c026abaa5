// Package logging builds the application zap logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Level is the minimum level written to Writer: debug, info, warn or error.
	Level string

	// Format is console or json.
	Format string

	// File, when set, also receives error-level entries.
	File string

	// Writer receives log output. Defaults to os.Stderr so stdout stays
	// free for command output.
	Writer io.Writer
}

// New builds a logger that writes entries at Level and above to Writer and
// error entries to File. The returned cleanup closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch opts.Format {
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		encoderCfg.TimeKey = "ts"
		encoderCfg.LevelKey = "level"
		encoderCfg.NameKey = "logger"
		encoderCfg.CallerKey = "caller"
		encoderCfg.MessageKey = "msg"
		encoderCfg.StacktraceKey = "stacktrace"
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q (must be console or json)", opts.Format)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(w), level),
	}

	cleanup := func() error { return nil }
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating log directory %s: %w", dir, err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- user-provided log path is expected
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", opts.File, err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(f),
			zapcore.ErrorLevel,
		))
		cleanup = f.Close
	}

	logger := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return logger, cleanup, nil
}
