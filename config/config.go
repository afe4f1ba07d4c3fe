// Package config loads runtime settings for the agentpatterns CLI and
// workflows from a .env file, an optional YAML/TOML/JSON config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smallnest/agentpatterns/log"
)

// EnvPrefix is prepended to every environment override, e.g. AGENTPATTERNS_MAX_TURNS.
const EnvPrefix = "AGENTPATTERNS"

// Config is the resolved configuration.
type Config struct {
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	OpenAIBaseURL   string `mapstructure:"openai_base_url"`

	Models    ModelsConfig `mapstructure:"models"`
	MaxTurns  int          `mapstructure:"max_turns"`
	Python    string       `mapstructure:"python"`
	OutputDir string       `mapstructure:"output_dir"`
	LogLevel  string       `mapstructure:"log_level"`
	Store     StoreConfig  `mapstructure:"store"`
}

// ModelsConfig holds provider-qualified model identifiers such as "openai:gpt-4.1".
type ModelsConfig struct {
	Generation string `mapstructure:"generation"`
	Reflection string `mapstructure:"reflection"`
	SQL        string `mapstructure:"sql"`
	Tool       string `mapstructure:"tool"`
}

// StoreConfig selects where workflow runs are persisted.
type StoreConfig struct {
	Driver string        `mapstructure:"driver"`
	DSN    string        `mapstructure:"dsn"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// Supported store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

var defaults = map[string]any{
	"openai_api_key":    "",
	"anthropic_api_key": "",
	"openai_base_url":   "",
	"models.generation": "openai:gpt-4.1-mini",
	"models.reflection": "openai:o4-mini",
	"models.sql":        "openai:gpt-4.1",
	"models.tool":       "openai:o4-mini",
	"max_turns":         5,
	"python":            "python3",
	"output_dir":        ".",
	"log_level":         "info",
	"store.driver":      StoreMemory,
	"store.dsn":         "",
	"store.prefix":      "agentpatterns:",
	"store.ttl":         time.Duration(0),
}

// Load resolves the configuration. A .env file in the working directory is
// loaded first when present. path names an explicit config file; when empty,
// agentpatterns.{yaml,toml,json} is looked up in the working directory and
// its absence is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"openai_api_key":    "OPENAI_API_KEY",
		"anthropic_api_key": "ANTHROPIC_API_KEY",
		"openai_base_url":   "OPENAI_BASE_URL",
	} {
		// The prefixed name wins over the provider-standard one.
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Debug("loaded config file %s", path)
	} else {
		v.SetConfigName("agentpatterns")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings no workflow can run with.
func (c *Config) Validate() error {
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StoreRedis, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Python == "" {
		return errors.New("python interpreter is required")
	}
	return nil
}

// APIKey returns the key configured for the named provider ("openai" or "anthropic").
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}
