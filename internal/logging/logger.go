package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/agrovoo/internal/config"
)

// FileName is the log file inside .agrovoo/logs.
const FileName = "agrovoo.log"

// New builds a JSON logger appending to .agrovoo/logs/agrovoo.log. The TUI
// owns the terminal, so nothing is written to stdout or stderr.
func New(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(cfg.LogsDir(), FileName)

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	zc.Sampling = nil
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}
