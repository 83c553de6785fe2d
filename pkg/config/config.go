// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Config contains configuration for a collision room
type Config struct {
	Room       RoomConfig       `json:"room"`
	Tree       TreeConfig       `json:"tree"`
	Resolution ResolutionConfig `json:"resolution"`
	Callbacks  CallbackConfig   `json:"callbacks"`
	// Debug makes the narrow phase report every overlapping segment pair
	// and validates the tree after every change.
	Debug bool `json:"debug"`
}

// RoomConfig contains the simulated area and step rate
type RoomConfig struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	StepRate int     `json:"stepRate"`
}

// TreeConfig contains the quadtree limits
type TreeConfig struct {
	MaxDepth int `json:"maxDepth"`
	Capacity int `json:"capacity"`
}

// ResolutionConfig contains the sampling used when pushing solid instances apart
type ResolutionConfig struct {
	OutsideSteps int     `json:"outsideSteps"`
	SweepStep    float64 `json:"sweepStep"`
	SweepRange   float64 `json:"sweepRange"`
	SettlePasses int     `json:"settlePasses"`
}

// CallbackConfig contains circuit breaker settings for collision callbacks
type CallbackConfig struct {
	MaxRequests         uint32        `json:"maxRequests"`
	Interval            time.Duration `json:"interval"`
	Timeout             time.Duration `json:"timeout"`
	MaxConsecutiveFails uint32        `json:"maxConsecutiveFails"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default room configuration
func DefaultConfig() *Config {
	return &Config{
		Room: RoomConfig{
			Width:    1280,
			Height:   720,
			StepRate: 60,
		},
		Tree: TreeConfig{
			MaxDepth: 8,
			Capacity: 8,
		},
		Resolution: ResolutionConfig{
			OutsideSteps: 10,
			SweepStep:    5,
			SweepRange:   180,
			SettlePasses: 4,
		},
		Callbacks: CallbackConfig{
			MaxRequests:         3,
			Interval:            60 * time.Second,
			Timeout:             5 * time.Second,
			MaxConsecutiveFails: 5,
		},
		Debug: false,
	}
}

// StepInterval returns the wall-clock duration of one step
func (c *Config) StepInterval() time.Duration {
	if c.Room.StepRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Room.StepRate)
}
