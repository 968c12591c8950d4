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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validTestConfig() Config {
	return Config{
		Server: ServerConfig{Address: ":8080", Environment: "test"},
		OpenAI: OpenAIConfig{
			APIKey:   "sk-test-key",
			Endpoint: "https://api.openai.com/v1",
		},
		Generation: GenerationConfig{
			Models:                []string{"gpt-4o", "gpt-4o-mini"},
			RetriesPerModel:       2,
			MaxAttempts:           4,
			MaxTokens:             8192,
			Temperature:           0.4,
			RequestTimeoutSeconds: 90,
		},
		Store: StoreConfig{DBPath: "./weaver.db"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  address: ":9090"
openai:
  apikey: "sk-test-key"  # pragma: allowlist secret
  endpoint: "https://api.openai.com/v1"
generation:
  models: ["gpt-4o", "gpt-4o-mini"]
  retries_per_model: 2
  max_attempts: 4
  max_tokens: 4096
  temperature: 0.2
  request_timeout_seconds: 60
store:
  db_path: "./test_weaver.db"
logging:
  level: "debug"
  format: "json"
  output: "stdout"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Test basic configuration loading
	if config.OpenAI.APIKey != "sk-test-key" {
		t.Errorf("Expected OpenAI API key 'sk-test-key', got '%s'", config.OpenAI.APIKey)
	}

	if config.Server.Address != ":9090" {
		t.Errorf("Expected server address ':9090', got '%s'", config.Server.Address)
	}

	if len(config.Generation.Models) != 2 {
		t.Errorf("Expected 2 models, got %d", len(config.Generation.Models))
	}

	if config.Generation.Temperature != 0.2 {
		t.Errorf("Expected generation temperature 0.2, got %f", config.Generation.Temperature)
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	// Create temporary config file with default values
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: "sk-default-key"
store:
  db_path: "./default_weaver.db"
logging:
  level: "info"
  format: "json"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Set environment variables
	_ = os.Setenv("OPENAI_API_KEY", "sk-env-key")
	_ = os.Setenv("NETLIFY_API_TOKEN", "nfp-env-token")
	_ = os.Setenv("UNSPLASH_ACCESS_KEY", "unsplash-env-key")
	_ = os.Setenv("LOG_LEVEL", "debug")
	_ = os.Setenv("LOG_FORMAT", "text")

	defer func() {
		_ = os.Unsetenv("OPENAI_API_KEY")
		_ = os.Unsetenv("NETLIFY_API_TOKEN")
		_ = os.Unsetenv("UNSPLASH_ACCESS_KEY")
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("LOG_FORMAT")
	}()

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Test environment variable overrides
	if config.OpenAI.APIKey != "sk-env-key" {
		t.Errorf("Expected OpenAI API key from env 'sk-env-key', got '%s'", config.OpenAI.APIKey)
	}

	if config.Deploy.APIToken != "nfp-env-token" {
		t.Errorf("Expected deploy token from env 'nfp-env-token', got '%s'", config.Deploy.APIToken)
	}

	if config.Images.UnsplashAccessKey != "unsplash-env-key" {
		t.Errorf("Expected Unsplash key from env 'unsplash-env-key', got '%s'", config.Images.UnsplashAccessKey)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level from env 'debug', got '%s'", config.Logging.Level)
	}

	if config.Logging.Format != "text" {
		t.Errorf("Expected log format from env 'text', got '%s'", config.Logging.Format)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError bool
		errorContains string
	}{
		{
			name:          "Valid configuration",
			mutate:        func(c *Config) {},
			expectedError: false,
		},
		{
			name:          "Missing OpenAI API key",
			mutate:        func(c *Config) { c.OpenAI.APIKey = "" },
			expectedError: true,
			errorContains: "OpenAI API key is required",
		},
		{
			name:          "No models configured",
			mutate:        func(c *Config) { c.Generation.Models = nil },
			expectedError: true,
			errorContains: "at least one model is required",
		},
		{
			name:          "Zero retries per model",
			mutate:        func(c *Config) { c.Generation.RetriesPerModel = 0 },
			expectedError: true,
			errorContains: "retries_per_model must be at least 1",
		},
		{
			name:          "Attempt budget exceeds capacity",
			mutate:        func(c *Config) { c.Generation.MaxAttempts = 10 },
			expectedError: true,
			errorContains: "must not exceed models x retries_per_model",
		},
		{
			name:          "Invalid temperature",
			mutate:        func(c *Config) { c.Generation.Temperature = 3.0 },
			expectedError: true,
			errorContains: "temperature must be between 0 and 2",
		},
		{
			name:          "Invalid log level",
			mutate:        func(c *Config) { c.Logging.Level = "invalid" },
			expectedError: true,
			errorContains: "log level must be one of",
		},
		{
			name: "Deploy enabled without token",
			mutate: func(c *Config) {
				c.Deploy.Enabled = true
				c.Deploy.CleanupCount = 3
				c.Deploy.BuildTimeoutSeconds = 120
			},
			expectedError: true,
			errorContains: "deploy API token is required",
		},
		{
			name: "Deploy enabled with token",
			mutate: func(c *Config) {
				c.Deploy.Enabled = true
				c.Deploy.APIToken = "nfp-test-token"
				c.Deploy.CleanupCount = 3
				c.Deploy.BuildTimeoutSeconds = 120
			},
			expectedError: false,
		},
		{
			name:          "Missing store path",
			mutate:        func(c *Config) { c.Store.DBPath = "" },
			expectedError: true,
			errorContains: "store database path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validTestConfig()
			tt.mutate(&config)

			err := validateConfig(&config)

			if tt.expectedError {
				if err == nil {
					t.Errorf("Expected validation error, but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', but got: %v", tt.errorContains, err)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no validation error, but got: %v", err)
				}
			}
		})
	}
}

func TestMaskSensitiveValues(t *testing.T) {
	config := &Config{
		OpenAI: OpenAIConfig{
			APIKey: "sk-test-1234567890abcdef", // pragma: allowlist secret
		},
		Deploy: DeployConfig{
			APIToken: "nfp-secret-token-123456789", // pragma: allowlist secret
		},
	}

	masked := config.MaskSensitiveValues()

	// Original config should remain unchanged
	if config.OpenAI.APIKey != "sk-test-1234567890abcdef" {
		t.Errorf("Original config API key should remain unchanged")
	}

	// Masked config should have sensitive values masked
	expectedAPIKey := "sk-test-" + "****************"
	if masked.OpenAI.APIKey != expectedAPIKey {
		t.Errorf("Expected masked API key '%s', got '%s'", expectedAPIKey, masked.OpenAI.APIKey)
	}

	token := "nfp-secret-token-123456789"
	expectedToken := token[:8] + strings.Repeat("*", len(token)-8)
	if masked.Deploy.APIToken != expectedToken {
		t.Errorf("Expected masked token '%s', got '%s'", expectedToken, masked.Deploy.APIToken)
	}
}

func TestConfigPathEnvironmentVariable(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom_config.yaml")

	configContent := `
openai:
  apikey: "sk-custom-key"
store:
  db_path: "./weaver.db"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Set CONFIG_PATH environment variable
	_ = os.Setenv("CONFIG_PATH", configPath)
	defer func() {
		_ = os.Unsetenv("CONFIG_PATH")
	}()

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.OpenAI.APIKey != "sk-custom-key" {
		t.Errorf("Expected OpenAI API key from custom config 'sk-custom-key', got '%s'", config.OpenAI.APIKey)
	}
}

func TestLoadWithOptions(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: ""
store:
  db_path: "./weaver.db"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Test with validation disabled: the missing API key is tolerated
	config, err := LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: false,
	})
	if err != nil {
		t.Fatalf("Failed to load config with options: %v", err)
	}

	if config.OpenAI.APIKey != "" {
		t.Errorf("Expected empty API key, got '%s'", config.OpenAI.APIKey)
	}

	// Test with validation enabled and the same missing required field
	_, err = LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: true,
	})
	if err == nil {
		t.Error("Expected validation error for missing API key, but got none")
	}
}

func TestDefaultValues(t *testing.T) {
	// Create temporary config file with minimal required fields
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
openai:
  apikey: "sk-test-key"  # pragma: allowlist secret
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Test default values
	if config.OpenAI.Endpoint != "https://api.openai.com/v1" {
		t.Errorf("Expected default OpenAI endpoint 'https://api.openai.com/v1', got '%s'", config.OpenAI.Endpoint)
	}

	if config.Server.Address != ":8080" {
		t.Errorf("Expected default server address ':8080', got '%s'", config.Server.Address)
	}

	if config.Generation.RetriesPerModel != 2 {
		t.Errorf("Expected default retries_per_model 2, got %d", config.Generation.RetriesPerModel)
	}

	if config.Generation.MaxAttempts != 5 {
		t.Errorf("Expected default max_attempts 5, got %d", config.Generation.MaxAttempts)
	}

	if len(config.Generation.Models) != 3 {
		t.Errorf("Expected 3 default models, got %d", len(config.Generation.Models))
	}

	if config.Deploy.Enabled {
		t.Error("Expected deploy to be disabled by default")
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", config.Logging.Level)
	}
}

func TestGetEnvironment(t *testing.T) {
	// Test default environment
	env := getEnvironment()
	if env != "development" {
		t.Errorf("Expected default environment 'development', got '%s'", env)
	}

	// Test ENVIRONMENT variable
	_ = os.Setenv("ENVIRONMENT", "production")
	env = getEnvironment()
	if env != "production" {
		t.Errorf("Expected environment 'production', got '%s'", env)
	}
	_ = os.Unsetenv("ENVIRONMENT")

	// Test ENV variable
	_ = os.Setenv("ENV", "staging")
	env = getEnvironment()
	if env != "staging" {
		t.Errorf("Expected environment 'staging', got '%s'", env)
	}
	_ = os.Unsetenv("ENV")
}

func TestValidationError(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Message: "test error message",
	}

	expected := "configuration validation failed for field 'test.field': test error message"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short value",
			input:    "short",
			expected: "*****",
		},
		{
			name:     "Long value",
			input:    "sk-test-1234567890abcdef",
			expected: "sk-test-" + "****************",
		},
		{
			name:     "Exactly 8 characters",
			input:    "12345678",
			expected: "********",
		},
		{
			name:     "9 characters",
			input:    "123456789",
			expected: "12345678" + "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskValue(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
