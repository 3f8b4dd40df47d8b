// Package config provides configuration management for the RPKI CA core.
//
// Configuration is loaded from:
//  1. config.yaml file (optional)
//  2. Environment variables (standard names like STORE_ROOT_DIR, LOG_LEVEL)
//  3. Default values
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Store   StoreConfig   `mapstructure:"store" validate:"required"`
	History HistoryConfig `mapstructure:"history" validate:"required"`
	Log     LogConfig     `mapstructure:"log" validate:"required"`
}

// StoreConfig contains EventStore filesystem settings.
type StoreConfig struct {
	// RootDir is the directory under which every aggregate's namespace
	// directory is created (§6.1).
	RootDir string `mapstructure:"root_dir" validate:"required"`
}

// HistoryConfig contains CommandHistory pagination defaults.
type HistoryConfig struct {
	// DefaultRows bounds a command_history page when the caller's
	// criteria does not set Rows explicitly.
	DefaultRows int `mapstructure:"default_rows" validate:"required,gt=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rpki-ca-core")

	// No prefix: STORE_ROOT_DIR, LOG_LEVEL, etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.root_dir", "./data")
	v.SetDefault("history.default_rows", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
