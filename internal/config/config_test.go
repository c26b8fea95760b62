package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout())
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout())

	assert.Empty(t, cfg.OpenSearch.URL)
	assert.Equal(t, "events", cfg.OpenSearch.Index)

	assert.Equal(t, 100, cfg.Suggest.DefaultSize)
	assert.Equal(t, 1000, cfg.Suggest.MaxSize)
	assert.Equal(t, 5*time.Second, cfg.Suggest.Timeout())

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 300, cfg.CORS.MaxAgeSeconds)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  read_timeout_seconds: 30
opensearch:
  url: https://localhost:9200
  index: logs
suggest:
  default_size: 25
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout())
	// Unset keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout())

	assert.Equal(t, "https://localhost:9200", cfg.OpenSearch.URL)
	assert.Equal(t, "logs", cfg.OpenSearch.Index)
	assert.Equal(t, 25, cfg.Suggest.DefaultSize)
	assert.Equal(t, 1000, cfg.Suggest.MaxSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("FILTERDECK_SERVER_PORT", "7070")
	t.Setenv("FILTERDECK_OPENSEARCH_URL", "https://search:9200")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://search:9200", cfg.OpenSearch.URL)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
