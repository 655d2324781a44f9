package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "specs", cfg.Library.Dir)
	assert.Equal(t, "https://kroki.io", cfg.Renderer.Endpoint)
	assert.Equal(t, 20, cfg.Cache.Capacity)
	assert.Equal(t, 2*time.Second, cfg.PlayerInterval())
	assert.Equal(t, 15*time.Second, cfg.RendererTimeout())
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	doc := `
library:
  dir: /var/lib/stepviz/specs
  watch: true
renderer:
  endpoint: http://kroki.internal:8000
  timeout_seconds: 5
cache:
  capacity: 50
server:
  addr: ":9090"
  cors_origins:
    - http://localhost:5173
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/stepviz/specs", cfg.Library.Dir)
	assert.True(t, cfg.Library.Watch)
	assert.Equal(t, "http://kroki.internal:8000", cfg.Renderer.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.RendererTimeout())
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	// Untouched sections keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.PlayerInterval())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STEPVIZ_LIBRARY_DIR", "/tmp/specs")
	t.Setenv("STEPVIZ_RENDERER_ENDPOINT", "http://localhost:8000")
	t.Setenv("STEPVIZ_ADDR", ":7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/specs", cfg.Library.Dir)
	assert.Equal(t, "http://localhost:8000", cfg.Renderer.Endpoint)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}
