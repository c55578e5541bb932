package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Machine.RAMSize != 1024*1024 {
		t.Errorf("Expected RAMSize=1048576, got %d", cfg.Machine.RAMSize)
	}
	if cfg.Machine.RegisterCount != 32 {
		t.Errorf("Expected RegisterCount=32, got %d", cfg.Machine.RegisterCount)
	}
	if cfg.Machine.ClockInterval != "1us" {
		t.Errorf("Expected ClockInterval=1us, got %s", cfg.Machine.ClockInterval)
	}
	if cfg.API.Enabled {
		t.Error("Expected API.Enabled=false")
	}
	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("Expected HistorySize=1000, got %d", cfg.Debugger.HistorySize)
	}
	if !cfg.Debugger.ShowSource {
		t.Error("Expected ShowSource=true")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Machine.RegisterCount != 32 {
		t.Errorf("expected defaults, got RegisterCount=%d", cfg.Machine.RegisterCount)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Machine.RAMSize = 2 * 1024 * 1024
	cfg.Machine.RegisterCount = 16
	cfg.API.Enabled = true
	cfg.API.Address = "0.0.0.0:9000"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Machine.RAMSize != 2*1024*1024 {
		t.Errorf("Expected RAMSize=2097152, got %d", loaded.Machine.RAMSize)
	}
	if loaded.Machine.RegisterCount != 16 {
		t.Errorf("Expected RegisterCount=16, got %d", loaded.Machine.RegisterCount)
	}
	if !loaded.API.Enabled {
		t.Error("Expected API.Enabled=true")
	}
	if loaded.API.Address != "0.0.0.0:9000" {
		t.Errorf("Expected Address=0.0.0.0:9000, got %s", loaded.API.Address)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bad.toml")
	if err := os.WriteFile(configPath, []byte("not valid = [toml"), 0600); err != nil {
		t.Fatalf("failed to write test fixture: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected an error parsing malformed TOML")
	}
}
