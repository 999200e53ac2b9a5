// Package config loads the runtime configuration from config.yaml, the
// environment (prefix LOCALMIND) and built-in defaults, in ascending
// precedence. All tunable policy values live here: the engine step ceiling,
// retry policy, run timeout, worker slots, inference endpoint and sampling
// settings, and storage location.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/localmind-ai/localmind/store/sqlite"
	"github.com/spf13/viper"
)

// InferenceConfig points at the local OpenAI-compatible model server.
type InferenceConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Stop        []string      `mapstructure:"stop"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EngineConfig holds the graph execution policy.
type EngineConfig struct {
	MaxSteps      int           `mapstructure:"max_steps"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

// BoundaryConfig holds the async task boundary policy.
type BoundaryConfig struct {
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
	WorkerSlots int           `mapstructure:"worker_slots"`
}

// ToolsConfig holds the external capability endpoints. An empty endpoint
// disables the capability; its route degrades to an explanatory answer.
type ToolsConfig struct {
	SearchEndpoint string `mapstructure:"search_endpoint"`
	EmailEndpoint  string `mapstructure:"email_endpoint"`
}

// Config is the full runtime configuration.
type Config struct {
	Inference InferenceConfig `mapstructure:"inference"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Boundary  BoundaryConfig  `mapstructure:"boundary"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Storage   sqlite.Config   `mapstructure:"storage"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
}

// Load reads configuration from cfgFile (or the default search path when
// empty), layering environment variables over file values over defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.localmind")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LOCALMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine; defaults and env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefault materializes the default configuration at path so users have a
// file to edit. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate rejects values that would make the engine misbehave.
func (c *Config) Validate() error {
	if c.Inference.BaseURL == "" {
		return fmt.Errorf("inference.base_url is required")
	}
	if c.Inference.Model == "" {
		return fmt.Errorf("inference.model is required")
	}
	if c.Inference.Temperature < 0 || c.Inference.Temperature > 2 {
		return fmt.Errorf("inference.temperature must be in [0, 2], got %v", c.Inference.Temperature)
	}
	if c.Engine.MaxSteps <= 0 {
		return fmt.Errorf("engine.max_steps must be positive, got %d", c.Engine.MaxSteps)
	}
	if c.Engine.RetryAttempts <= 0 {
		return fmt.Errorf("engine.retry_attempts must be positive, got %d", c.Engine.RetryAttempts)
	}
	if c.Boundary.RunTimeout <= 0 {
		return fmt.Errorf("boundary.run_timeout must be positive, got %v", c.Boundary.RunTimeout)
	}
	if c.Boundary.WorkerSlots <= 0 {
		return fmt.Errorf("boundary.worker_slots must be positive, got %d", c.Boundary.WorkerSlots)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage.in_memory is false")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// The model server is a local llama.cpp-style process by default.
	v.SetDefault("inference.base_url", "http://127.0.0.1:8080/v1")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.model", "local")
	v.SetDefault("inference.temperature", 0.1)
	v.SetDefault("inference.max_tokens", 1024)
	v.SetDefault("inference.stop", []string{"<|eot_id|>"})
	v.SetDefault("inference.timeout", 2*time.Minute)

	v.SetDefault("engine.max_steps", 24)
	v.SetDefault("engine.retry_attempts", 2)
	v.SetDefault("engine.retry_backoff", 250*time.Millisecond)

	v.SetDefault("boundary.run_timeout", 5*time.Minute)
	v.SetDefault("boundary.worker_slots", 4)

	v.SetDefault("tools.search_endpoint", "")
	v.SetDefault("tools.email_endpoint", "")

	v.SetDefault("storage.path", "localmind.db")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.enable_wal", true)
	v.SetDefault("storage.busy_timeout", 5*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}
