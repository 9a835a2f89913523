// Package config loads ahghee settings.
//
// Settings are layered, later layers winning:
//  1. Built-in defaults
//  2. A YAML file (--config, or ./ahghee.yaml when present)
//  3. AHGHEE_* environment variables (AHGHEE_STORE_PATH sets store.path)
//
// The merged result is validated against an embedded CUE schema.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AHGHEE_"

// Config holds every setting.
type Config struct {
	Store     StoreConfig   `mapstructure:"store" json:"store"`
	Log       LogConfig     `mapstructure:"log" json:"log"`
	Workers   int           `mapstructure:"workers" json:"workers"`
	MaxVisits int           `mapstructure:"max_visits" json:"max_visits"`
	Shell     ShellConfig   `mapstructure:"shell" json:"shell"`
	Metrics   MetricsConfig `mapstructure:"metrics" json:"metrics"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	// Backend is sqlite, badger or memory.
	Backend string `mapstructure:"backend" json:"backend"`
	// Path is the SQLite file or Badger directory.
	Path string `mapstructure:"path" json:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

type ShellConfig struct {
	Prompt  string `mapstructure:"prompt" json:"prompt"`
	History string `mapstructure:"history" json:"history"`
}

type MetricsConfig struct {
	// Enabled prints a metrics summary when a command finishes.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// defaults are applied before any file or environment layer.
var defaults = map[string]any{
	"store.backend":   "sqlite",
	"store.path":      "ahghee.db",
	"log.level":       "warn",
	"log.format":      "text",
	"workers":         4,
	"max_visits":      10000,
	"shell.prompt":    "wat> ",
	"shell.history":   "",
	"metrics.enabled": false,
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from path (optional) and the process
// environment, then validates it.
func Load(path string) (*Config, error) {
	return load(viper.New(), path, os.Environ())
}

func load(v *viper.Viper, path string, environ []string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ahghee")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	applyEnv(v, environ)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv maps PREFIX_A_B to the known key a.b or a_b. Only keys that
// have a default are considered, so underscores inside key names
// (max_visits) resolve unambiguously.
func applyEnv(v *viper.Viper, environ []string) {
	byEnv := make(map[string]string, len(defaults))
	for key := range defaults {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		byEnv[name] = key
	}

	for _, envStr := range environ {
		name, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if key, known := byEnv[name]; known {
			v.Set(key, value)
		}
	}
}

// Logger builds the slog logger the settings describe, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
