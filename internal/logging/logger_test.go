package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a .modatlas/config.yaml into dir with the given logging section.
func writeTestConfig(t *testing.T, dir, yamlBody string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".modatlas")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(yamlBody), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
}

func resetLogging() {
	CloseAll()
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	configLoaded = false
	logLevel = LevelInfo
}

func TestInitialize_NoConfig(t *testing.T) {
	defer resetLogging()

	tmpDir := t.TempDir()
	if err := Initialize(tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsDebugMode() {
		t.Error("expected debug mode disabled without config")
	}

	// Logs directory should not be created in production mode
	if _, err := os.Stat(filepath.Join(tmpDir, ".modatlas", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not exist without debug mode")
	}
}

func TestInitialize_DebugMode(t *testing.T) {
	defer resetLogging()

	tmpDir := t.TempDir()
	writeTestConfig(t, tmpDir, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if !IsDebugMode() {
		t.Fatal("expected debug mode enabled")
	}

	Resolve("resolved %s", "services/auth-core")
	CloseAll()

	data, err := os.ReadFile(filepath.Join(tmpDir, ".modatlas", "logs", "resolve.log"))
	if err != nil {
		t.Fatalf("expected resolve.log: %v", err)
	}
	if !strings.Contains(string(data), "resolved services/auth-core") {
		t.Errorf("log content missing message, got: %s", data)
	}
}

func TestCategoryFilter(t *testing.T) {
	defer resetLogging()

	tmpDir := t.TempDir()
	writeTestConfig(t, tmpDir, "logging:\n  debug_mode: true\n  level: debug\n  categories:\n    atlas: false\n")

	if err := Initialize(tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryAtlas) {
		t.Error("atlas category should be disabled")
	}
	if !IsCategoryEnabled(CategoryResolve) {
		t.Error("resolve category should default to enabled")
	}

	// Disabled category writes nothing
	Atlas("should not appear")
	CloseAll()

	if _, err := os.Stat(filepath.Join(tmpDir, ".modatlas", "logs", "atlas.log")); !os.IsNotExist(err) {
		t.Error("atlas.log should not exist for disabled category")
	}
}

func TestTimer(t *testing.T) {
	defer resetLogging()

	tmpDir := t.TempDir()
	writeTestConfig(t, tmpDir, "logging:\n  debug_mode: true\n  level: debug\n")
	if err := Initialize(tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	timer := StartTimer(CategoryAtlas, "ComputeFoldRadius")
	elapsed := timer.Stop()
	if elapsed < 0 {
		t.Errorf("expected non-negative duration, got %v", elapsed)
	}
}
