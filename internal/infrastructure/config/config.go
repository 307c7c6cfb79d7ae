package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Content backends
const (
	BackendDirectus = "directus"
	BackendFile     = "file"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Content   ContentConfig
	Sandbox   SandboxConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ContentConfig selects and configures the content source.
type ContentConfig struct {
	Backend  string        `envconfig:"CONTENT_BACKEND" default:"directus"`
	URL      string        `envconfig:"CONTENT_URL" default:"http://localhost:8055"`
	Token    string        `envconfig:"CONTENT_TOKEN"`
	Timeout  time.Duration `envconfig:"CONTENT_TIMEOUT" default:"15s"`
	RPS      float64       `envconfig:"CONTENT_RPS" default:"0"`
	Fixtures string        `envconfig:"CONTENT_FIXTURES" default:"testdata/catalog"`
}

// SandboxConfig holds isolation context limits.
type SandboxConfig struct {
	Timeout   time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
	MaxFrames int           `envconfig:"SANDBOX_MAX_FRAMES" default:"1024"`
	FrameTTL  time.Duration `envconfig:"SANDBOX_FRAME_TTL" default:"30m"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds the origins allowed to call the JSON API.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Content.Backend {
	case BackendDirectus:
		if c.Content.URL == "" {
			return fmt.Errorf("invalid config: CONTENT_URL is required for the %s backend", BackendDirectus)
		}
	case BackendFile:
		if c.Content.Fixtures == "" {
			return fmt.Errorf("invalid config: CONTENT_FIXTURES is required for the %s backend", BackendFile)
		}
	default:
		return fmt.Errorf("invalid config: unknown CONTENT_BACKEND %q", c.Content.Backend)
	}
	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("invalid config: SANDBOX_TIMEOUT must be positive")
	}
	if c.Sandbox.MaxFrames <= 0 {
		return fmt.Errorf("invalid config: SANDBOX_MAX_FRAMES must be positive")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Content: ContentConfig{
			Backend:  BackendDirectus,
			URL:      "http://localhost:8055",
			Timeout:  15 * time.Second,
			Fixtures: "testdata/catalog",
		},
		Sandbox: SandboxConfig{
			Timeout:   5 * time.Second,
			MaxFrames: 1024,
			FrameTTL:  30 * time.Minute,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
