// Package config handles dpaint configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all application settings. Scene, canvas and brush settings live in
// the scene file, not here.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Bake    BakeConfig    `yaml:"bake"`
	Sim     SimConfig     `yaml:"sim"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// BakeConfig holds output locations for baked frames.
type BakeConfig struct {
	OutputDir   string `yaml:"output_dir"`
	CacheDir    string `yaml:"cache_dir"`
	ImageFormat string `yaml:"image_format"` // png or tiff
	StatsFile   string `yaml:"stats_file"`   // CSV, empty disables
}

// SimConfig holds simulation resource limits.
type SimConfig struct {
	Workers   int `yaml:"workers"`    // 0 uses GOMAXPROCS
	MaxPoints int `yaml:"max_points"` // per-surface point/sample budget
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Bake: BakeConfig{
			OutputDir:   "out",
			CacheDir:    "cache",
			ImageFormat: "png",
		},
		Sim: SimConfig{
			Workers:   0,
			MaxPoints: 64 << 20,
		},
	}
}

// Validate checks settings that cannot be fixed up silently.
func (c *Config) Validate() error {
	switch c.Bake.ImageFormat {
	case "png", "tiff":
	default:
		return fmt.Errorf("%w: image_format %q (want png or tiff)", ErrInvalid, c.Bake.ImageFormat)
	}
	if c.Sim.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Sim.Workers)
	}
	if c.Sim.MaxPoints <= 0 {
		return fmt.Errorf("%w: max_points %d", ErrInvalid, c.Sim.MaxPoints)
	}
	return nil
}
