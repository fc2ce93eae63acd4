// Package config loads client settings from a config file, .env and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKPLANE_URL.
const EnvPrefix = "TASKPLANE"

// Config holds all configuration values for taskctl.
type Config struct {
	// Base URL of the task service
	URL string `mapstructure:"url"`

	// Optional bearer token sent with every request
	Token string `mapstructure:"token"`

	// Per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// Client-side request rate (req/s). 0 means unlimited.
	RateLimit float64 `mapstructure:"rate_limit"`

	// Burst allowed above RateLimit
	RateBurst int `mapstructure:"rate_burst"`

	// debug, info, warn or error
	LogLevel string `mapstructure:"log_level"`

	// OTLP/gRPC collector for client spans, e.g. localhost:4317.
	// Empty keeps spans local; trace context is still sent to the service.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "http://localhost:8000")
	v.SetDefault("token", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("log_level", "warn")
	v.SetDefault("otlp_endpoint", "")
}

// Load reads configuration into a fresh viper instance.
// If path is empty, $HOME/.taskctl.yaml is used when present.
func Load(path string) (*Config, error) {
	return FromViper(viper.New(), path)
}

// FromViper reads configuration through v, so callers can bind flags to it first.
// Precedence: flags, environment (.env included), config file, defaults.
func FromViper(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	// .env never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".taskctl.yaml"))
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.URL == "" {
		return fmt.Errorf("url is required (env: %s_URL)", EnvPrefix)
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("invalid url %q: must start with http:// or https://", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit %v: must not be negative", c.RateLimit)
	}
	c.OTLPEndpoint = strings.TrimSpace(c.OTLPEndpoint)
	if strings.Contains(c.OTLPEndpoint, "://") {
		return fmt.Errorf("invalid otlp_endpoint %q: expected host:port", c.OTLPEndpoint)
	}
	if c.RateBurst < 1 {
		c.RateBurst = 1
	}
	return nil
}
