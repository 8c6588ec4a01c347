// Package config loads the inkwell configuration file and applies
// environment overrides. All consumers receive an explicit *Config; nothing
// else in the tree reads the environment.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabaseURL = "file://./.inkwell"
	DefaultModel       = "gpt-4o"
	DefaultImageModel  = "dall-e-3"
	DefaultLogLevel    = "info"
	DefaultMaxImages   = 5
)

// LLM configures the chat completion client used for generation and review.
type LLM struct {
	APIKey  string `yaml:"api_key"  validate:"required"`
	Model   string `yaml:"model"    validate:"required"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

// Images configures the illustration pipeline.
type Images struct {
	Model     string `yaml:"model"      validate:"required"`
	MaxImages int    `yaml:"max_images" validate:"gte=1,lte=20"`
	Style     string `yaml:"style"`
}

// Config is the full application configuration.
type Config struct {
	// DatabaseURL selects the session store by scheme, file:// or redis://.
	DatabaseURL string `yaml:"database_url" validate:"required"`
	LogLevel    string `yaml:"log_level"    validate:"oneof=debug info warn error"`

	LLM    LLM    `yaml:"llm"    validate:"required"`
	Images Images `yaml:"images"`
}

var validate = validator.New()

// Load reads the YAML file at path, fills defaults, applies environment
// overrides and validates the result. An empty path yields a default
// configuration built from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = DefaultDatabaseURL
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}

	if c.Images.Model == "" {
		c.Images.Model = DefaultImageModel
	}

	if c.Images.MaxImages == 0 {
		c.Images.MaxImages = DefaultMaxImages
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = v
	}

	if v := os.Getenv("INKWELL_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}

	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
