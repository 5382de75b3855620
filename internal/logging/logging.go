// Package logging builds the program's zap logger
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/planets/internal/model"
)

// New returns a logger for cfg. Console output is split: errors go to stderr,
// everything below to stdout. Level "none" disables logging entirely. When a
// destination is configured the same records are also written to that file.
func New(cfg model.LoggingConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func build(cfg model.LoggingConfig, stdout, stderr zapcore.WriteSyncer) (*zap.Logger, error) {
	var minLevel zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "none", "":
		return zap.NewNop(), nil
	case "normal", "info":
		minLevel = zapcore.InfoLevel
	case "debug":
		minLevel = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q (use none, normal or debug)", cfg.Level)
	}

	enc, err := encoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	low := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(enc, stdout, low),
		zapcore.NewCore(enc.Clone(), stderr, high),
	}

	if cfg.Destination != "" {
		f, err := os.OpenFile(cfg.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log destination (%s): %w", cfg.Destination, err)
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.Lock(f), zap.NewAtomicLevelAt(minLevel)))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("planets"), nil
}

func encoder(format string) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (use console or json)", format)
	}
}
