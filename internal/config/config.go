// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BusinessConfig struct {
	// Timezone is the single IANA zone every date and time-of-day is
	// evaluated in. It is configured once, never per request.
	Timezone string `yaml:"timezone"`
	// SettingsCacheSeconds is how long availability handlers may reuse a
	// loaded settings snapshot. Zero disables caching.
	SettingsCacheSeconds int `yaml:"settings_cache_seconds"`
	// PhoneRegion is the default region for parsing customer phone numbers
	// that are not in international format.
	PhoneRegion string `yaml:"phone_region"`
}

type JobsConfig struct {
	// NoShowCron schedules the sweep that flags stale pending appointments.
	NoShowCron string `yaml:"no_show_cron"`
	// NoShowGraceMinutes is how long past its start an appointment may stay
	// pending before the sweep marks it a no-show.
	NoShowGraceMinutes int `yaml:"no_show_grace_minutes"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Business BusinessConfig `yaml:"business"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Business.Timezone == "" {
		c.Business.Timezone = "UTC"
	}
	if c.Business.PhoneRegion == "" {
		c.Business.PhoneRegion = "US"
	}
	if c.Jobs.NoShowCron == "" {
		c.Jobs.NoShowCron = "*/30 * * * *"
	}
	if c.Jobs.NoShowGraceMinutes == 0 {
		c.Jobs.NoShowGraceMinutes = 120
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("invalid business timezone %q: %w", c.Business.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.Jobs.NoShowCron); err != nil {
		return fmt.Errorf("invalid no_show_cron %q: %w", c.Jobs.NoShowCron, err)
	}
	if c.Jobs.NoShowGraceMinutes < 0 {
		return fmt.Errorf("no_show_grace_minutes must be 0 or greater")
	}
	if c.Business.SettingsCacheSeconds < 0 {
		return fmt.Errorf("settings_cache_seconds must be 0 or greater")
	}
	return nil
}

// Location resolves the configured business timezone. Validate has already
// checked it, so a failure here means tzdata went missing at runtime.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Business.Timezone)
}

// SettingsCacheTTL returns the settings cache TTL as a duration.
func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.Business.SettingsCacheSeconds) * time.Second
}

// NoShowGrace returns the no-show grace period as a duration.
func (c *Config) NoShowGrace() time.Duration {
	return time.Duration(c.Jobs.NoShowGraceMinutes) * time.Minute
}
