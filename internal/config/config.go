// Package config handles configuration loading for regwacc.
// It supports YAML config files, an optional .env file and environment
// variable overrides.
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

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Beta     BetaConfig     `mapstructure:"beta"     yaml:"beta"     json:"beta"`
	Examples ExamplesConfig `mapstructure:"examples" yaml:"examples" json:"examples"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string   `mapstructure:"host"            yaml:"host"            json:"host"`
	Port           int      `mapstructure:"port"            yaml:"port"            json:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"    yaml:"cors_origins"    json:"cors_origins"`
	RequestTimeout int      `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"` // seconds
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// BetaConfig configures the live beta sources.
type BetaConfig struct {
	FinnhubKey string `mapstructure:"finnhub_key"  yaml:"finnhub_key"  json:"-"`
	FinnhubURL string `mapstructure:"finnhub_url"  yaml:"finnhub_url"  json:"finnhub_url"`
	ScrapeURL  string `mapstructure:"scrape_url"   yaml:"scrape_url"   json:"scrape_url"` // template with one %s; empty disables
	TimeoutSec int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"  json:"timeout_sec"`
	CacheTTL   int    `mapstructure:"cache_ttl"    yaml:"cache_ttl"    json:"cache_ttl"` // seconds
	RatePerMin int    `mapstructure:"rate_per_min" yaml:"rate_per_min" json:"rate_per_min"`
}

// Timeout returns the per-source lookup timeout.
func (b BetaConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// CacheDuration returns the live-beta cache TTL.
func (b BetaConfig) CacheDuration() time.Duration {
	return time.Duration(b.CacheTTL) * time.Second
}

// ExamplesConfig points at an optional YAML example dataset.
type ExamplesConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"` // empty: built-in dataset
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// envPrefix is prepended to every environment override.
const envPrefix = "REGWACC"

var configFileUsed string

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.regwacc/config.yaml (home directory)
//  3. /etc/regwacc/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: REGWACC_<SECTION>_<KEY>, e.g., REGWACC_BETA_FINNHUB_KEY
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".regwacc"))
	v.AddConfigPath("/etc/regwacc")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	configFileUsed = v.ConfigFileUsed()

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	configFileUsed = v.ConfigFileUsed()

	return unmarshal(v)
}

// ConfigFilePath returns the file the last Load read, or "" when only
// defaults and environment variables were used.
func ConfigFilePath() string {
	return configFileUsed
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d", c.API.Port)
	}
	if c.Beta.TimeoutSec < 0 || c.Beta.CacheTTL < 0 || c.Beta.RatePerMin < 0 {
		return fmt.Errorf("beta timeout_sec, cache_ttl and rate_per_min must not be negative")
	}
	if c.Beta.ScrapeURL != "" && strings.Count(c.Beta.ScrapeURL, "%s") != 1 {
		return fmt.Errorf("beta.scrape_url must contain exactly one %%s: %q", c.Beta.ScrapeURL)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q (want text or json)", c.Logging.Format)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout", 30)

	// Beta defaults
	v.SetDefault("beta.finnhub_url", "https://finnhub.io/api/v1")
	v.SetDefault("beta.scrape_url", "")
	v.SetDefault("beta.timeout_sec", 5)
	v.SetDefault("beta.cache_ttl", 3600) // 1 hour
	v.SetDefault("beta.rate_per_min", 60)

	// Examples defaults
	v.SetDefault("examples.file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// FINNHUB_API_KEY is honoured for compatibility with existing deployments.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		cfg.Beta.FinnhubKey = key
	}
	if key := os.Getenv(envPrefix + "_BETA_FINNHUB_KEY"); key != "" {
		cfg.Beta.FinnhubKey = key
	}
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
