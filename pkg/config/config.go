package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging   LoggingConfig `mapstructure:"logging"`
	Catalog   CatalogConfig `mapstructure:"catalog"`
	Prompt    PromptConfig  `mapstructure:"prompt"`
	StateFile string        `mapstructure:"state_file" validate:"required"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file" validate:"required"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level" validate:"oneof=debug info warn warning error fatal"`
}

// CatalogConfig selects the prompt catalog backend. Options are handed to
// the backend as-is (profile, endpoint_url, path).
type CatalogConfig struct {
	Backend    string            `mapstructure:"backend" validate:"oneof=bedrock sqlite"`
	RegionName string            `mapstructure:"region_name"`
	Options    map[string]string `mapstructure:"options"`
}

// PromptConfig holds defaults applied when creating prompts
type PromptConfig struct {
	DefaultModel string `mapstructure:"default_model" validate:"required"`
	VariantName  string `mapstructure:"variant_name" validate:"required"`
	TemplateDir  string `mapstructure:"template_dir"`
}

var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Set replaces the global config instance
func Set(c *Config) {
	cfg = c
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.promptvault")
		viper.AddConfigPath(filepath.Join(xdgConfigHome, "promptvault"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("PROMPTVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("logging.log_file", "./.promptvault/promptvault.log")
	viper.SetDefault("logging.preserve", true)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("catalog.backend", "bedrock")
	viper.SetDefault("catalog.region_name", "us-east-1")

	viper.SetDefault("prompt.default_model", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	viper.SetDefault("prompt.variant_name", "variant-001")
	viper.SetDefault("prompt.template_dir", ".")

	viper.SetDefault("state_file", "./.promptvault/identity.yaml")
}

// bindEnvironmentVariables maps the AWS SDK's own region variables onto the
// catalog region so either spelling works
func bindEnvironmentVariables() {
	viper.BindEnv("catalog.region_name", "PROMPTVAULT_CATALOG_REGION_NAME", "AWS_REGION", "AWS_DEFAULT_REGION")
}

// WriteDefaultConfig writes the effective configuration to path so it can be
// edited. An existing file is left alone unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	setDefaults()
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}
