package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: test-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLen)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.4, cfg.LLM.ItineraryTemperature, 0.001)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, time.Duration(0), cfg.Search.ResultDelay)
	assert.True(t, cfg.DemoMode(), "no database dsn means demo mode")
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 10s
database:
  dsn: "file:passage.db?cache=shared&mode=rwc"
auth:
  secret: super-secret
  token_ttl: 1h
llm:
  endpoint: "http://localhost:11434/v1"
  api_key: test-key
  model: llama3
  itinerary_temperature: 0.2
search:
  result_delay: 1500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "file:passage.db?cache=shared&mode=rwc", cfg.Database.DSN)
	assert.Equal(t, "super-secret", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.ItineraryTemperature, 0.001)
	assert.Equal(t, 1500*time.Millisecond, cfg.Search.ResultDelay)
	assert.False(t, cfg.DemoMode())

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "expanded-key")
	path := writeConfig(t, `
llm:
  api_key: ${TEST_LLM_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.LLM.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "database configured without auth secret",
			content: `
database:
  dsn: "file:passage.db"
`,
		},
		{
			name: "temperature out of range",
			content: `
llm:
  itinerary_temperature: 3.5
`,
		},
		{
			name: "server timeout too low",
			content: `
server:
  timeout: 100ms
`,
		},
		{
			name:    "bad yaml",
			content: "server: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	assert.Error(t, err)
}
