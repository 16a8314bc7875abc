package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/complaint-triage/internal/config"
)

// NewLogger creates a structured zap.Logger writing JSON to stdout.
// Used by the mock store, which owns its terminal.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	return build(cfg, []string{"stdout"})
}

// NewFileLogger creates a logger writing to the configured file. The
// dashboard uses this because bubbletea owns the terminal; with no
// file configured, logging is a no-op.
func NewFileLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	return build(cfg, []string{cfg.File})
}

func build(cfg config.LoggerConfig, outputs []string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "message",
			LevelKey:   "level",
			TimeKey:    "ts",
			EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(l.String())
			},
			EncodeTime: zapcore.ISO8601TimeEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}
