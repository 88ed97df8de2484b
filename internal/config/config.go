// Package config handles configuration loading for bonosportal.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BONOSPORTAL_API_BASE_URL.
const EnvPrefix = "BONOSPORTAL"

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Cache   CacheConfig   `mapstructure:"cache"   yaml:"cache"`
	Gateway GatewayConfig `mapstructure:"gateway" yaml:"gateway"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig points the client at the financial backend.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"    yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"  yaml:"rate_limit"`  // requests/second, 0 = unlimited
	RateBurst  int           `mapstructure:"rate_burst"  yaml:"rate_burst"`
	BatchLimit int           `mapstructure:"batch_limit" yaml:"batch_limit"` // concurrent requests per batch delete
}

// SessionConfig controls durable session state.
type SessionConfig struct {
	DBPath    string `mapstructure:"db_path"   yaml:"db_path"`
	Ephemeral bool   `mapstructure:"ephemeral" yaml:"ephemeral"` // keep the session in memory only
}

// CacheConfig holds client-side cache windows.
type CacheConfig struct {
	DerivedWindow time.Duration `mapstructure:"derived_window" yaml:"derived_window"`
	CatalogTTL    time.Duration `mapstructure:"catalog_ttl"    yaml:"catalog_ttl"`
}

// GatewayConfig holds the local HTTP gateway settings.
type GatewayConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.bonosportal/config.yaml
//  3. /etc/bonosportal/config.yaml
//
// A .env file in the working directory is loaded first, without
// overriding variables already set. Environment variables override config
// file values.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".bonosportal"))
	v.AddConfigPath("/etc/bonosportal")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	cfg.Session.DBPath = expandHome(cfg.Session.DBPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the client can't run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Cache.DerivedWindow <= 0 {
		return fmt.Errorf("cache.derived_window must be positive")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("api.batch_limit", 4)

	v.SetDefault("session.db_path", filepath.Join("~", ".bonosportal", "session.db"))
	v.SetDefault("session.ephemeral", false)

	v.SetDefault("cache.derived_window", time.Minute)
	v.SetDefault("cache.catalog_ttl", 30*time.Second)

	v.SetDefault("gateway.host", "127.0.0.1")
	v.SetDefault("gateway.port", 4200)
	v.SetDefault("gateway.cors_origins", []string{"http://localhost:4200"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
