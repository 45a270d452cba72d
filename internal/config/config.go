// Package config loads snapsweep's optional YAML configuration. Flags
// override file values; file values override the built-in defaults.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/calderaops/snapsweep/internal/retention"
	"github.com/calderaops/snapsweep/internal/snapshot"
)

type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Retention RetentionConfig `yaml:"retention"`
	Watch     WatchConfig     `yaml:"watch"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type SourceConfig struct {
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"` // exact-match regexp over basenames
	Layout  string `yaml:"layout"`  // Go time layout decoding matched names
}

type RetentionConfig struct {
	Hours  int `yaml:"hours"`
	Days   int `yaml:"days"`
	Weeks  int `yaml:"weeks"`
	Months int `yaml:"months"`
	Years  int `yaml:"years"`
}

type WatchConfig struct {
	Schedule string        `yaml:"schedule"` // cron expression, empty = no schedule
	Debounce time.Duration `yaml:"debounce"` // settle time after a producer deposit
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // audit database, empty = default location
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// Default returns the built-in configuration. Loading a file overlays onto
// this, so omitted keys keep their defaults while explicit zeroes stick.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Pattern: snapshot.DefaultPattern,
			Layout:  snapshot.DefaultLayout,
		},
		Retention: RetentionConfig{Hours: 24, Days: 7, Weeks: 4, Months: 12, Years: 10},
		Watch:     WatchConfig{Debounce: 2 * time.Second},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Naming compiles the snapshot naming contract.
func (c *Config) Naming() (snapshot.Naming, error) {
	re, err := regexp.Compile(c.Source.Pattern)
	if err != nil {
		return snapshot.Naming{}, fmt.Errorf("invalid snapshot pattern %q: %w", c.Source.Pattern, err)
	}
	if c.Source.Layout == "" {
		return snapshot.Naming{}, fmt.Errorf("snapshot layout must not be empty")
	}
	return snapshot.Naming{Pattern: re, Layout: c.Source.Layout}, nil
}

// Policy returns the configured retention policy.
func (c *Config) Policy() retention.Policy {
	return retention.Policy{
		Hours:  c.Retention.Hours,
		Days:   c.Retention.Days,
		Weeks:  c.Retention.Weeks,
		Months: c.Retention.Months,
		Years:  c.Retention.Years,
	}
}
