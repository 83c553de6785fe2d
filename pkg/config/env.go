// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// LoadConfigFromEnv builds the default configuration with environment
// overrides applied, and validates it.
func LoadConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnvironmentOverrides applies COLLIDE_* environment variables on top of
// a loaded configuration and validates the result.
func ApplyEnvironmentOverrides(config *Config) error {
	config.Room.Width = getEnvAsFloatOrDefault("COLLIDE_ROOM_WIDTH", config.Room.Width)
	config.Room.Height = getEnvAsFloatOrDefault("COLLIDE_ROOM_HEIGHT", config.Room.Height)
	config.Room.StepRate = getEnvAsIntOrDefault("COLLIDE_STEP_RATE", config.Room.StepRate)
	config.Tree.MaxDepth = getEnvAsIntOrDefault("COLLIDE_TREE_MAX_DEPTH", config.Tree.MaxDepth)
	config.Tree.Capacity = getEnvAsIntOrDefault("COLLIDE_TREE_CAPACITY", config.Tree.Capacity)
	config.Resolution.SweepStep = getEnvAsFloatOrDefault("COLLIDE_SWEEP_STEP", config.Resolution.SweepStep)
	config.Callbacks.Timeout = getEnvAsDurationOrDefault("COLLIDE_CALLBACK_TIMEOUT", config.Callbacks.Timeout)
	config.Debug = getEnvAsBoolOrDefault("COLLIDE_DEBUG", config.Debug)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after environment overrides: %w", err)
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Room.Width <= 0 {
		return &ValidationError{Field: "Room.Width", Value: c.Room.Width, Message: "must be positive"}
	}
	if c.Room.Height <= 0 {
		return &ValidationError{Field: "Room.Height", Value: c.Room.Height, Message: "must be positive"}
	}
	if c.Room.StepRate < 1 || c.Room.StepRate > 1000 {
		return &ValidationError{Field: "Room.StepRate", Value: c.Room.StepRate, Message: "must be between 1 and 1000"}
	}
	if c.Tree.MaxDepth < 1 || c.Tree.MaxDepth > 16 {
		return &ValidationError{Field: "Tree.MaxDepth", Value: c.Tree.MaxDepth, Message: "must be between 1 and 16"}
	}
	if c.Tree.Capacity < 1 {
		return &ValidationError{Field: "Tree.Capacity", Value: c.Tree.Capacity, Message: "must be at least 1"}
	}
	if c.Resolution.OutsideSteps < 1 {
		return &ValidationError{Field: "Resolution.OutsideSteps", Value: c.Resolution.OutsideSteps, Message: "must be at least 1"}
	}
	if c.Resolution.SweepStep <= 0 || c.Resolution.SweepStep > 180 {
		return &ValidationError{Field: "Resolution.SweepStep", Value: c.Resolution.SweepStep, Message: "must be in (0, 180]"}
	}
	if c.Resolution.SweepRange < c.Resolution.SweepStep || c.Resolution.SweepRange > 360 {
		return &ValidationError{Field: "Resolution.SweepRange", Value: c.Resolution.SweepRange, Message: "must be between the sweep step and 360"}
	}
	if c.Resolution.SettlePasses < 1 {
		return &ValidationError{Field: "Resolution.SettlePasses", Value: c.Resolution.SettlePasses, Message: "must be at least 1"}
	}
	if c.Callbacks.MaxRequests < 1 {
		return &ValidationError{Field: "Callbacks.MaxRequests", Value: c.Callbacks.MaxRequests, Message: "must be at least 1"}
	}
	if c.Callbacks.Timeout < time.Millisecond {
		return &ValidationError{Field: "Callbacks.Timeout", Value: c.Callbacks.Timeout, Message: "must be at least 1ms"}
	}
	if c.Callbacks.MaxConsecutiveFails < 1 {
		return &ValidationError{Field: "Callbacks.MaxConsecutiveFails", Value: c.Callbacks.MaxConsecutiveFails, Message: "must be at least 1"}
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets an environment variable as int or returns a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloatOrDefault gets an environment variable as float64 or returns a default value
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBoolOrDefault gets an environment variable as bool or returns a default value
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDurationOrDefault gets an environment variable as duration or returns a default value
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}
