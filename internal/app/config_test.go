package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OVERLAY_CONFIG_PATH", "")
	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 1920, cfg.OverlayWidthPx)
	assert.True(t, cfg.MetricsEnabled)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
db_driver: sqlite
sqlite_path: /tmp/overlay.db
cors_origins: ["https://obs.example"]
overlay_width_px: 1280
otel_headers: "x-api-key=abc"
`), 0o600))
	t.Setenv("OVERLAY_CONFIG_PATH", path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTPAddr, "env wins over file")
	assert.Equal(t, "sqlite", cfg.DB().Driver)
	assert.Equal(t, "/tmp/overlay.db", cfg.DB().SQLitePath)
	assert.Equal(t, []string{"https://obs.example"}, cfg.CORSOrigins)
	assert.Equal(t, 1280, cfg.OverlayWidthPx)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, map[string]string{"x-api-key": "abc"}, cfg.Otel("test").Headers)
}

func TestLoadConfigRejectsBadWidth(t *testing.T) {
	t.Setenv("OVERLAY_CONFIG_PATH", "")
	t.Setenv("OVERLAY_WIDTH_PX", "-5")
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("OVERLAY_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}
