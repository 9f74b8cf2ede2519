// Package config loads planner settings from the environment and an optional
// YAML resolver file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DBPath         string `yaml:"db_path" validate:"required"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	LogFormat      string `yaml:"log_format" validate:"oneof=text json"`
	MaxSearchDepth int    `yaml:"max_search_depth" validate:"gte=1,lte=64"`
	MaxPlanDepth   int    `yaml:"max_plan_depth" validate:"gte=1,lte=1024"`
	CacheSize      int    `yaml:"cache_size" validate:"gte=-1"`

	// TerminalItems are never expanded even when a recipe produces them.
	TerminalItems []string `yaml:"terminal_items" validate:"dive,required"`
	// AchievableItems are base items an executor can gather on its own.
	AchievableItems []string `yaml:"achievable_items" validate:"dive,required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:          defaultDBPath,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		MaxSearchDepth:  defaultMaxSearchDepth,
		MaxPlanDepth:    defaultMaxPlanDepth,
		CacheSize:       defaultCacheSize,
		TerminalItems:   append([]string(nil), DefaultTerminalItems...),
		AchievableItems: append([]string(nil), DefaultAchievableItems...),
	}
}

// Load builds the configuration. Values come from the defaults, then the
// YAML file at path (skipped when path is empty), then environment variables,
// including any set in a local .env file.
func Load(path string) (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CRAFTPLAN_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the fields present in a YAML file. Lists in the file
// replace the defaults entirely.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DBPath = getEnv("CRAFTPLAN_DB", c.DBPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	var err error
	if c.MaxSearchDepth, err = getEnvInt("CRAFTPLAN_MAX_SEARCH_DEPTH", c.MaxSearchDepth); err != nil {
		return err
	}
	if c.MaxPlanDepth, err = getEnvInt("CRAFTPLAN_MAX_PLAN_DEPTH", c.MaxPlanDepth); err != nil {
		return err
	}
	if c.CacheSize, err = getEnvInt("CRAFTPLAN_CACHE_SIZE", c.CacheSize); err != nil {
		return err
	}
	return nil
}

// Validate checks field ranges and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}
