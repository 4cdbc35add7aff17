package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "explorer.log")
	if err := Init(Config{Level: "debug", OutputPath: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = Init(Config{}) })

	Debug("listing fetched", zap.String("node_id", "N1"))
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "listing fetched") || !strings.Contains(string(data), "N1") {
		t.Errorf("Log file missing entry: %s", data)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explorer.log")
	if err := Init(Config{Level: "debug", OutputPath: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = Init(Config{}) })

	SetLevel("warn")
	Debug("hidden")
	Warn("shown")
	_ = Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("Debug entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("Warn entry should be written")
	}
}

func TestInitWithoutPathDiscards(t *testing.T) {
	if err := Init(Config{Level: "bogus"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if globalLevel.Level() != zap.InfoLevel {
		t.Errorf("Unknown level should fall back to info, got %s", globalLevel.Level())
	}
	Info("dropped")
}
