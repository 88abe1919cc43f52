// Package config loads heatroll settings from a YAML file with defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

type ServerConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // used for QR links; derived from the port when empty
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type EngineConfig struct {
	Timezone  string `yaml:"timezone"`
	WheelSize int    `yaml:"wheel_size"`
	Seed      uint64 `yaml:"seed"` // 0 picks a nondeterministic source
}

type CatalogConfig struct {
	TokenURL     string `yaml:"token_url"`
	ImageBaseURL string `yaml:"image_base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Defaults returns the configuration used when no file is given
func Defaults() Config {
	return Config{
		Server:   ServerConfig{Port: 8081},
		Database: DatabaseConfig{Path: "heatroll.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Engine:   EngineConfig{Timezone: "America/New_York", WheelSize: 30},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Engine.WheelSize < 1 {
		return fmt.Errorf("engine.wheel_size must be positive, got %d", c.Engine.WheelSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the reference time zone used for heat windows
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Engine.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("engine.timezone: %w", err)
	}
	return loc, nil
}

// BaseURL returns the public base URL without a trailing slash
func (c Config) BaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}
