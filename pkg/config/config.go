package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"description=SQLite connection string; empty enables demo mode with the seeded in-memory directory"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Profile store configuration"`

	Auth AuthConfig `yaml:"auth" json:"auth" jsonschema:"description=Authentication configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=Generative content provider configuration"`

	Search SearchConfig `yaml:"search" json:"search" jsonschema:"description=Traveler search configuration"`
}

// AuthConfig holds session and credential settings
type AuthConfig struct {
	Secret         string        `yaml:"secret" json:"secret" jsonschema:"description=HMAC secret for session tokens (can use environment variable)"`
	TokenTTL       time.Duration `yaml:"token_ttl" json:"token_ttl" jsonschema:"default=24h,description=Session token lifetime"`
	MinPasswordLen int           `yaml:"min_password_len" json:"min_password_len" jsonschema:"default=6,description=Minimum password length accepted at sign-up"`
}

// LLMConfig holds settings for the OpenAI-compatible content provider used
// by the itinerary and icebreaker builders
type LLMConfig struct {
	Endpoint             string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint (default provider endpoint when empty)"`
	APIKey               string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable); generation fails without it"`
	Model                string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	ItineraryTemperature float64       `yaml:"itinerary_temperature" json:"itinerary_temperature" jsonschema:"default=0.4,description=Temperature for itinerary generation; low for factual safety info"`
	MaxTokens            int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=2048,description=Maximum tokens in response"`
	Timeout              time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
}

// SearchConfig holds traveler search settings
type SearchConfig struct {
	ResultDelay time.Duration `yaml:"result_delay" json:"result_delay" jsonschema:"default=0s,description=Artificial delay before search results; UI affordance only"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for auth
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.MinPasswordLen == 0 {
		cfg.Auth.MinPasswordLen = 6
	}

	// set defaults for LLM
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.ItineraryTemperature == 0 {
		cfg.LLM.ItineraryTemperature = 0.4
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DemoMode reports whether the app runs against the seeded in-memory
// directory instead of a configured profile store.
func (c *Config) DemoMode() bool {
	return c.Database.DSN == ""
}

// GetServerConfig returns listen address and timeout for the HTTP server
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if cfg.LLM.ItineraryTemperature < 0 || cfg.LLM.ItineraryTemperature > 2 {
		return fmt.Errorf("llm.itinerary_temperature must be between 0 and 2")
	}

	if !cfg.DemoMode() && cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required when a database is configured")
	}

	if cfg.Auth.MinPasswordLen < 1 {
		return fmt.Errorf("auth.min_password_len must be positive")
	}

	return nil
}
