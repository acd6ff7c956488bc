package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/config"
)

func TestNewWritesJSONLinesToLogFile(t *testing.T) {
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	logger, err := New(cfg, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("splash: stage entered", zap.String("stage", "scanning"))
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(cfg.LogsDir(), FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["msg"] != "splash: stage entered" || entry["stage"] != "scanning" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewSkipsDebugWhenQuiet(t *testing.T) {
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	logger, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	_ = logger.Sync()
	data, _ := os.ReadFile(filepath.Join(cfg.LogsDir(), FileName))
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug entry written at info level")
	}
}
