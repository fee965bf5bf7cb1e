// Package logging builds the zap loggers used by the contacts binary.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is where the interactive UI logs when no file is configured.
// The UI owns the terminal, so it never logs to stdout or stderr.
func DefaultFile() string {
	return filepath.Join(os.TempDir(), "contacts.log")
}

// NewFile returns a development logger that appends to path.
// The returned func flushes buffered entries and should be deferred.
func NewFile(path, level string) (*zap.SugaredLogger, func(), error) {
	cfg, err := baseConfig(level)
	if err != nil {
		return nil, nil, err
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return build(cfg)
}

// NewConsole returns a development logger that writes to stderr with
// colored levels, for the non-interactive subcommands.
func NewConsole(level string) (*zap.SugaredLogger, func(), error) {
	cfg, err := baseConfig(level)
	if err != nil {
		return nil, nil, err
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return build(cfg)
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func baseConfig(level string) (zap.Config, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("logging: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	return cfg, nil
}

func build(cfg zap.Config) (*zap.SugaredLogger, func(), error) {
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	sync := func() {
		// flushes buffer, if any
		_ = logger.Sync()
	}
	return logger.Sugar(), sync, nil
}
