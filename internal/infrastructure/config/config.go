package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/htmlgateway/internal/gateway"
	"github.com/GriffinCanCode/htmlgateway/internal/markup"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Files     FilesConfig
	Gateway   GatewayConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

// FilesConfig names every file and directory the gateway touches.
// Relative names resolve against RootDir.
type FilesConfig struct {
	RootDir          string `envconfig:"ROOT_DIR" default:"."`
	IndexFile        string `envconfig:"INDEX_FILE" default:"index.html"`
	HTMLDir          string `envconfig:"HTML_DIR" default:"html_files"`
	HTMLPattern      string `envconfig:"HTML_PATTERN" default:"*.html"`
	GeneratedFile    string `envconfig:"GENERATED_FILE" default:"new_page.html"`
	AboutFile        string `envconfig:"ABOUT_FILE" default:"about.html"`
	AboutRenamedFile string `envconfig:"ABOUT_RENAMED_FILE" default:"about1.html"`
	ObsoleteFile     string `envconfig:"OBSOLETE_FILE" default:"obsolete_page.html"`
}

// GatewayConfig holds file operation behavior switches.
type GatewayConfig struct {
	ReplaceMode  string `envconfig:"REPLACE_MODE" default:"pattern"`
	CountEngine  string `envconfig:"COUNT_ENGINE" default:"css"`
	CountWorkers int    `envconfig:"COUNT_WORKERS" default:"8"`
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

// Validate checks values envconfig cannot constrain on its own.
func (c *Config) Validate() error {
	if _, err := gateway.ParseReplaceMode(c.Gateway.ReplaceMode); err != nil {
		return fmt.Errorf("invalid REPLACE_MODE: %w", err)
	}
	if c.Gateway.CountEngine == "" {
		return fmt.Errorf("COUNT_ENGINE must not be empty")
	}
	if _, err := markup.NewCounter(c.Gateway.CountEngine); err != nil {
		return fmt.Errorf("invalid COUNT_ENGINE: %w", err)
	}
	if c.Gateway.CountWorkers <= 0 {
		return fmt.Errorf("invalid COUNT_WORKERS %d: must be positive", c.Gateway.CountWorkers)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// Address returns the host:port pair to listen on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Files: FilesConfig{
			RootDir:          ".",
			IndexFile:        "index.html",
			HTMLDir:          "html_files",
			HTMLPattern:      "*.html",
			GeneratedFile:    "new_page.html",
			AboutFile:        "about.html",
			AboutRenamedFile: "about1.html",
			ObsoleteFile:     "obsolete_page.html",
		},
		Gateway: GatewayConfig{
			ReplaceMode:  string(gateway.ModePattern),
			CountEngine:  markup.EngineCSS,
			CountWorkers: 8,
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
	}
}
