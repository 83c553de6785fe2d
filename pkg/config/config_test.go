package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if config.Room.Width != 1280 || config.Room.Height != 720 {
		t.Errorf("Expected room 1280x720, got %vx%v", config.Room.Width, config.Room.Height)
	}
	if config.Room.StepRate != 60 {
		t.Errorf("Expected StepRate 60, got %d", config.Room.StepRate)
	}
	if config.Tree.MaxDepth != 8 {
		t.Errorf("Expected MaxDepth 8, got %d", config.Tree.MaxDepth)
	}
	if config.Tree.Capacity != 8 {
		t.Errorf("Expected Capacity 8, got %d", config.Tree.Capacity)
	}
	if config.Resolution.OutsideSteps != 10 {
		t.Errorf("Expected OutsideSteps 10, got %d", config.Resolution.OutsideSteps)
	}
	if config.Resolution.SweepStep != 5 {
		t.Errorf("Expected SweepStep 5, got %v", config.Resolution.SweepStep)
	}
	if config.Resolution.SweepRange != 180 {
		t.Errorf("Expected SweepRange 180, got %v", config.Resolution.SweepRange)
	}
	if config.Resolution.SettlePasses != 4 {
		t.Errorf("Expected SettlePasses 4, got %d", config.Resolution.SettlePasses)
	}
	if config.Debug {
		t.Error("Expected Debug to be false")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

func TestConfig_StepInterval(t *testing.T) {
	tests := []struct {
		rate     int
		expected time.Duration
	}{
		{60, time.Second / 60},
		{1, time.Second},
		{0, 0},
	}
	for _, tt := range tests {
		config := DefaultConfig()
		config.Room.StepRate = tt.rate
		if got := config.StepInterval(); got != tt.expected {
			t.Errorf("StepInterval() with rate %d = %v, expected %v", tt.rate, got, tt.expected)
		}
	}
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test_config.json")

	data := `{"room": {"width": 640, "height": 480, "stepRate": 30}, "tree": {"capacity": 4}, "debug": true}`
	if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Room.Width != 640 || loaded.Room.Height != 480 {
		t.Errorf("Expected room 640x480, got %vx%v", loaded.Room.Width, loaded.Room.Height)
	}
	if loaded.Tree.Capacity != 4 {
		t.Errorf("Expected Capacity 4, got %d", loaded.Tree.Capacity)
	}
	if loaded.Tree.MaxDepth != 8 {
		t.Errorf("Expected missing MaxDepth to keep default 8, got %d", loaded.Tree.MaxDepth)
	}
	if !loaded.Debug {
		t.Error("Expected Debug to be true")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))

	if err == nil {
		t.Error("Expected error when loading non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when file not found, got non-nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to open config file") {
		t.Errorf("Expected open error, got '%s'", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected error to wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_config.json")
	if err := os.WriteFile(configPath, []byte(`{"room": {"width": 10, invalid json}`), 0o644); err != nil {
		t.Fatalf("Failed to write invalid JSON file: %v", err)
	}

	config, err := LoadConfig(configPath)

	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when JSON is invalid, got non-nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Expected parse error, got '%s'", err.Error())
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.Room.Width = 2000
	config.Tree.Capacity = 16
	config.Callbacks.Timeout = 2 * time.Second

	configPath := filepath.Join(t.TempDir(), "save_test_config.json")
	if err := SaveConfig(config, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if *loaded != *config {
		t.Errorf("LoadConfig() = %+v, expected %+v", *loaded, *config)
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	invalidPath := filepath.Join(t.TempDir(), "missing", "directory", "config.json")

	err := SaveConfig(DefaultConfig(), invalidPath)

	if err == nil {
		t.Fatal("Expected error when saving to invalid path, got nil")
	}
	if !strings.Contains(err.Error(), "failed to write config file") {
		t.Errorf("Expected write error, got '%s'", err.Error())
	}
}
