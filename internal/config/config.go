// Package config loads the collector configuration from an optional TOML
// file, a .env file and environment variables, in that order of precedence
// (environment wins).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/collector"
	"github.com/jo-urn/lol-scouter/pkg/logging"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables.
const (
	EnvAPIKey      = "RIOT_API_KEY"
	EnvAPIKeyAlias = "TOKEN"
	EnvRedisAddr   = "SCOUTER_REDIS_ADDR"
	EnvLogLevel    = "SCOUTER_LOG_LEVEL"
	EnvOutput      = "SCOUTER_OUTPUT"
)

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Config is the complete application configuration.
type Config struct {
	API       APIConfig        `toml:"api"`
	Storage   StorageConfig    `toml:"storage"`
	Cache     CacheConfig      `toml:"cache"`
	Logging   logging.Config   `toml:"logging"`
	Metrics   MetricsConfig    `toml:"metrics"`
	Collector collector.Config `toml:"collector"`
}

// APIConfig holds the Riot API connection settings.
type APIConfig struct {
	// APIKey is normally supplied through the environment.
	APIKey        string        `toml:"api_key"`
	BaseURL       string        `toml:"base_url"`
	DataDragonURL string        `toml:"data_dragon_url"`
	UserAgent     string        `toml:"user_agent"`
	Timeout       time.Duration `toml:"timeout"`
}

// StorageConfig selects where tables are read from and written to.
type StorageConfig struct {
	Output string `toml:"output"`
	Input  string `toml:"input"`
}

// CacheConfig configures the optional Redis response cache.
type CacheConfig struct {
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// MetricsConfig configures the /metrics endpoint.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the embedded example configuration.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load builds the configuration. path is an optional TOML file; envFile an
// optional .env file. An explicitly named file that cannot be read is an
// error, while a missing default .env is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	switch {
	case envFile != "":
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	default:
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", DefaultEnvFile, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.APIKey = v
	} else if v := os.Getenv(EnvAPIKeyAlias); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = logging.LogLevel(v)
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Storage.Output = v
	}
}

// Validate checks settings needed by every command. The API key is checked
// separately since offline commands run without it.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative (got %s)", c.API.Timeout))
	}
	if c.Storage.Output == "" {
		errs = append(errs, errors.New("storage.output is required"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative (got %s)", c.Cache.TTL))
	}
	if _, err := logging.ParseLevel(string(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if err := c.Collector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("collector: %w", err))
	}
	return errors.Join(errs...)
}

// RequireAPIKey reports ErrMissingAPIKey when no key was configured.
func (c *Config) RequireAPIKey() error {
	if c.API.APIKey == "" {
		return fmt.Errorf("%w: set %s or %s", client.ErrMissingAPIKey, EnvAPIKey, EnvAPIKeyAlias)
	}
	return nil
}

// ClientConfig returns the HTTP client configuration.
func (c *Config) ClientConfig() client.Config {
	cc := client.DefaultConfig(c.API.APIKey)
	cc.BaseURL = c.API.BaseURL
	if c.API.DataDragonURL != "" {
		cc.DataDragonURL = c.API.DataDragonURL
	}
	if c.API.UserAgent != "" {
		cc.UserAgent = c.API.UserAgent
	}
	cc.Timeout = c.API.Timeout
	return cc
}

// WriteExample writes the example configuration to path, refusing to
// overwrite an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
