package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Everything is loaded from environment
// variables; every field has a workable default.
type Config struct {
	Port              string  `env:"PORT" envDefault:"8080"`
	DatabasePath      string  `env:"DATABASE_PATH" envDefault:"cleanup.db"`
	MaxImageWidth     int     `env:"MAX_IMAGE_WIDTH" envDefault:"300"`
	JPEGQuality       int     `env:"JPEG_QUALITY" envDefault:"45"`
	ImprovementFactor float64 `env:"IMPROVEMENT_FACTOR" envDefault:"0.9"`
	DisplayTimezone   string  `env:"DISPLAY_TIMEZONE" envDefault:"America/Bogota"`
	MaxUploadBytes    int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxImageWidth <= 0 {
		return fmt.Errorf("MAX_IMAGE_WIDTH must be positive, got %d", c.MaxImageWidth)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.ImprovementFactor <= 0 || c.ImprovementFactor > 1 {
		return fmt.Errorf("IMPROVEMENT_FACTOR must be in (0, 1], got %g", c.ImprovementFactor)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// Location returns the configured display timezone. Validate must have
// passed, so the lookup cannot fail.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
