package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every override variable.
const EnvPrefix = "CRYPTOVIEW"

// EnvOverrides are deployment settings read from CRYPTOVIEW_* variables.
// Set values replace the file's values.
type EnvOverrides struct {
	InstanceID      string `envconfig:"INSTANCE_ID"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	LogFormat       string `envconfig:"LOG_FORMAT"`
	CoinGeckoAPIKey string `envconfig:"COINGECKO_API_KEY"`
	ReconcilePolicy string `envconfig:"RECONCILE_POLICY"`
	Symbol          string `envconfig:"SYMBOL"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	HealthPort      *int   `envconfig:"HEALTH_PORT"`
}

// Load reads a YAML config file and expands environment variables. An
// empty path yields an empty config, so defaults and overrides alone apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Expand ${VAR} environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays CRYPTOVIEW_* variables.
func (c *Config) applyEnv() error {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read env overrides: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Instance.ID, env.InstanceID)
	set(&c.Log.Level, env.LogLevel)
	set(&c.Log.Format, env.LogFormat)
	set(&c.Poller.APIKey, env.CoinGeckoAPIKey)
	set(&c.Reconcile.Policy, env.ReconcilePolicy)
	set(&c.Selection.Symbol, env.Symbol)
	if env.RedisAddr != "" {
		c.Redis.Addr = env.RedisAddr
		c.Redis.Enabled = true
	}
	set(&c.Redis.Password, env.RedisPassword)
	if env.HealthPort != nil {
		c.Health.Port = *env.HealthPort
	}
	return nil
}
