package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives the demo binary. Flags override the file.
type Config struct {
	Address  string     `yaml:"address"`
	LogLevel string     `yaml:"log_level"`
	Demo     DemoConfig `yaml:"demo"`
}

// DemoConfig controls the color-cycle loop.
type DemoConfig struct {
	CycleInterval time.Duration `yaml:"cycle_interval"`
	HueStep       float64       `yaml:"hue_step"`
	BackLED       uint8         `yaml:"back_led"`
	Duration      time.Duration `yaml:"duration"`
}

// LoadConfig reads a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return config, nil
}

// DefaultConfig returns the settings used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Demo: DemoConfig{
			CycleInterval: 50 * time.Millisecond,
			HueStep:       0.05,
			BackLED:       0,
			Duration:      30 * time.Second,
		},
	}
}
