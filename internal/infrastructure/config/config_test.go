package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/htmlgateway/internal/gateway"
	"github.com/GriffinCanCode/htmlgateway/internal/markup"
)

var managedEnv = []string{
	"PORT", "CORS_ORIGINS", "HOST", "SHUTDOWN_TIMEOUT",
	"ROOT_DIR", "INDEX_FILE", "HTML_DIR", "HTML_PATTERN", "GENERATED_FILE", "ABOUT_FILE", "ABOUT_RENAMED_FILE", "OBSOLETE_FILE",
	"REPLACE_MODE", "COUNT_ENGINE", "COUNT_WORKERS",
	"LOG_LEVEL", "LOG_DEV",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedEnv {
		if prev, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
	}
}

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for key, value := range values {
		require.NoError(t, os.Setenv(key, value))
		k := key
		t.Cleanup(func() { os.Unsetenv(k) })
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	// Files config
	assert.Equal(t, ".", cfg.Files.RootDir)
	assert.Equal(t, "index.html", cfg.Files.IndexFile)
	assert.Equal(t, "html_files", cfg.Files.HTMLDir)
	assert.Equal(t, "*.html", cfg.Files.HTMLPattern)
	assert.Equal(t, "new_page.html", cfg.Files.GeneratedFile)
	assert.Equal(t, "about.html", cfg.Files.AboutFile)
	assert.Equal(t, "about1.html", cfg.Files.AboutRenamedFile)
	assert.Equal(t, "obsolete_page.html", cfg.Files.ObsoleteFile)

	// Gateway config
	assert.Equal(t, string(gateway.ModePattern), cfg.Gateway.ReplaceMode)
	assert.Equal(t, markup.EngineCSS, cfg.Gateway.CountEngine)
	assert.Equal(t, 8, cfg.Gateway.CountWorkers)

	// Logging and rate limit config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"SHUTDOWN_TIMEOUT":   "3s",
		"CORS_ORIGINS":       "https://a.example,https://b.example",
		"ROOT_DIR":           "/srv/site",
		"HTML_DIR":           "pages",
		"HTML_PATTERN":       "**/*.htm*",
		"ABOUT_FILE":         "team.html",
		"REPLACE_MODE":       "literal",
		"COUNT_ENGINE":       "xpath",
		"COUNT_WORKERS":      "2",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())

	assert.Equal(t, "/srv/site", cfg.Files.RootDir)
	assert.Equal(t, "pages", cfg.Files.HTMLDir)
	assert.Equal(t, "**/*.htm*", cfg.Files.HTMLPattern)
	assert.Equal(t, "team.html", cfg.Files.AboutFile)
	assert.Equal(t, "index.html", cfg.Files.IndexFile)

	assert.Equal(t, string(gateway.ModeLiteral), cfg.Gateway.ReplaceMode)
	assert.Equal(t, markup.EngineXPath, cfg.Gateway.CountEngine)
	assert.Equal(t, 2, cfg.Gateway.CountWorkers)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown replace mode", env: map[string]string{"REPLACE_MODE": "fuzzy"}},
		{name: "unknown count engine", env: map[string]string{"COUNT_ENGINE": "regex"}},
		{name: "empty replace mode", env: map[string]string{"REPLACE_MODE": " "}},
		{name: "zero workers", env: map[string]string{"COUNT_WORKERS": "0"}},
		{name: "non-numeric workers", env: map[string]string{"COUNT_WORKERS": "many"}},
		{name: "bad duration", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setEnv(t, tt.env)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateAcceptsEveryGatewayChoice(t *testing.T) {
	for _, mode := range []gateway.ReplaceMode{gateway.ModePattern, gateway.ModeLiteral} {
		for _, engine := range []string{markup.EngineCSS, markup.EngineXPath} {
			cfg := Default()
			cfg.Gateway.ReplaceMode = string(mode)
			cfg.Gateway.CountEngine = engine
			assert.NoError(t, cfg.Validate(), "%s/%s", mode, engine)
		}
	}

	cfg := Default()
	cfg.Gateway.CountEngine = ""
	assert.Error(t, cfg.Validate())
}
