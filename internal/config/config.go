// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	// ErrMissingRequiredField is returned when a required configuration field is missing
	ErrMissingRequiredField = errors.New("missing required configuration field")
	// ErrInvalidConfigValue is returned when a configuration value is invalid
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Deploy     DeployConfig     `mapstructure:"deploy"`
	Images     ImagesConfig     `mapstructure:"images"`
	Store      StoreConfig      `mapstructure:"store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains the HTTP server configuration
type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

// OpenAIConfig contains the chat-completion provider configuration
type OpenAIConfig struct {
	APIKey   string `mapstructure:"apikey"`
	Endpoint string `mapstructure:"endpoint"`
}

// GenerationConfig contains the model rotation and invocation settings
type GenerationConfig struct {
	Models                []string `mapstructure:"models"`
	RetriesPerModel       int      `mapstructure:"retries_per_model"`
	MaxAttempts           int      `mapstructure:"max_attempts"`
	MaxTokens             int      `mapstructure:"max_tokens"`
	Temperature           float64  `mapstructure:"temperature"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds"`
}

// DeployConfig contains the hosting provider configuration
type DeployConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	APIToken            string `mapstructure:"api_token"`
	CleanupCount        int    `mapstructure:"cleanup_count"`
	BuildTimeoutSeconds int    `mapstructure:"build_timeout_seconds"`
}

// ImagesConfig contains the stock photo provider keys. Providers without a
// key are left out of the search chain.
type ImagesConfig struct {
	UnsplashAccessKey string `mapstructure:"unsplash_access_key"`
	PixabayAPIKey     string `mapstructure:"pixabay_api_key"`
	PexelsAPIKey      string `mapstructure:"pexels_api_key"`
}

// StoreConfig contains the SQLite store configuration
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	EnableHotReload  bool
	Environment      string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over config file values
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		EnableHotReload:  false,
		Environment:      getEnvironment(),
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set configuration file path
	if err := setConfigFile(v, opts.ConfigPath); err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CODE_WEAVER")

	// Read configuration file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error if env vars are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set explicit environment variable mappings
	setEnvironmentMappings(v)

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.environment", "development")

	// OpenAI defaults
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")

	// Generation defaults. The attempt cap deliberately sits below the
	// full models x retries capacity to bound per-request API spend.
	v.SetDefault("generation.models", []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
	})
	v.SetDefault("generation.retries_per_model", 2)
	v.SetDefault("generation.max_attempts", 5)
	v.SetDefault("generation.max_tokens", 8192)
	v.SetDefault("generation.temperature", 0.4)
	v.SetDefault("generation.request_timeout_seconds", 90)

	// Deploy defaults
	v.SetDefault("deploy.enabled", false)
	v.SetDefault("deploy.cleanup_count", 3)
	v.SetDefault("deploy.build_timeout_seconds", 120)

	// Store defaults
	v.SetDefault("store.db_path", "./weaver.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// setConfigFile sets the configuration file path. An explicitly requested
// file must exist; the default locations are optional because env-only
// deployments are supported.
func setConfigFile(v *viper.Viper, configPath string) error {
	// Check for CONFIG_PATH environment variable
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return nil
	}

	// Use provided config path
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return nil
	}

	// Default fallback locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	return nil
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	// Map common environment variables
	envMappings := map[string]string{
		"OPENAI_API_KEY":      "openai.apikey",
		"OPENAI_ENDPOINT":     "openai.endpoint",
		"NETLIFY_API_TOKEN":   "deploy.api_token",
		"UNSPLASH_ACCESS_KEY": "images.unsplash_access_key",
		"PIXABAY_API_KEY":     "images.pixabay_api_key",
		"PEXELS_API_KEY":      "images.pexels_api_key",
		"STORE_DB_PATH":       "store.db_path",
		"SERVER_ADDRESS":      "server.address",
		"LOG_LEVEL":           "logging.level",
		"LOG_FORMAT":          "logging.format",
		"LOG_OUTPUT":          "logging.output",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errors []ValidationError

	// Validate required fields
	if config.OpenAI.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "openai.apikey",
			Message: "OpenAI API key is required. Set via config file or OPENAI_API_KEY environment variable",
		})
	}

	if config.Server.Address == "" {
		errors = append(errors, ValidationError{
			Field:   "server.address",
			Message: "server address is required",
		})
	}

	// Validate the rotation budget
	if len(config.Generation.Models) == 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.models",
			Message: "at least one model is required",
		})
	}

	if config.Generation.RetriesPerModel < 1 {
		errors = append(errors, ValidationError{
			Field:   "generation.retries_per_model",
			Message: "retries_per_model must be at least 1",
		})
	}

	if config.Generation.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "generation.max_attempts",
			Message: "max_attempts must be at least 1",
		})
	}

	if capacity := len(config.Generation.Models) * config.Generation.RetriesPerModel; capacity > 0 && config.Generation.MaxAttempts > capacity {
		errors = append(errors, ValidationError{
			Field:   "generation.max_attempts",
			Message: fmt.Sprintf("max_attempts must not exceed models x retries_per_model (%d)", capacity),
		})
	}

	if config.Generation.MaxTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.max_tokens",
			Message: "max_tokens must be greater than 0",
		})
	}

	if config.Generation.Temperature < 0 || config.Generation.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "generation.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if config.Generation.RequestTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.request_timeout_seconds",
			Message: "request_timeout_seconds must be greater than 0",
		})
	}

	// Validate deploy settings only when deployment is enabled
	if config.Deploy.Enabled {
		if config.Deploy.APIToken == "" {
			errors = append(errors, ValidationError{
				Field:   "deploy.api_token",
				Message: "deploy API token is required when deploy is enabled. Set via config file or NETLIFY_API_TOKEN environment variable",
			})
		}
		if config.Deploy.CleanupCount < 1 {
			errors = append(errors, ValidationError{
				Field:   "deploy.cleanup_count",
				Message: "cleanup_count must be at least 1",
			})
		}
		if config.Deploy.BuildTimeoutSeconds <= 0 {
			errors = append(errors, ValidationError{
				Field:   "deploy.build_timeout_seconds",
				Message: "build_timeout_seconds must be greater than 0",
			})
		}
	}

	// Validate enum values
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	// Validate file paths
	if config.Store.DBPath == "" {
		errors = append(errors, ValidationError{
			Field:   "store.db_path",
			Message: "store database path is required",
		})
	}

	if config.Store.DBPath != "" {
		if err := validateDirectoryExists(filepath.Dir(config.Store.DBPath)); err != nil {
			errors = append(errors, ValidationError{
				Field:   "store.db_path",
				Message: fmt.Sprintf("store database directory does not exist: %s", filepath.Dir(config.Store.DBPath)),
			})
		}
	}

	// Return all validation errors
	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	// Mask sensitive fields
	if masked.OpenAI.APIKey != "" {
		masked.OpenAI.APIKey = maskValue(masked.OpenAI.APIKey)
	}
	if masked.Deploy.APIToken != "" {
		masked.Deploy.APIToken = maskValue(masked.Deploy.APIToken)
	}
	if masked.Images.UnsplashAccessKey != "" {
		masked.Images.UnsplashAccessKey = maskValue(masked.Images.UnsplashAccessKey)
	}
	if masked.Images.PixabayAPIKey != "" {
		masked.Images.PixabayAPIKey = maskValue(masked.Images.PixabayAPIKey)
	}
	if masked.Images.PexelsAPIKey != "" {
		masked.Images.PexelsAPIKey = maskValue(masked.Images.PexelsAPIKey)
	}

	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateDirectoryExists checks if a directory exists
func validateDirectoryExists(path string) error {
	if path == "" || path == "." {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// getEnvironment returns the current environment (development, production, etc.)
func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "development"
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	// Set up configuration
	if err := setConfigFile(v, configPath); err != nil {
		return err
	}

	// Enable watching
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Printf("Config file changed: %s\n", e.Name)

		// Reload configuration
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			EnableHotReload:  true,
			Environment:      getEnvironment(),
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config: %v\n", err)
			return
		}

		// Call callback with new config
		callback(config)
	})

	return nil
}
