package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(body), 0o644))
	chdir(t, dir)
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
database:
  dsn: postgres://u:p@db:5432/carnivals
sync:
  use_mock: true
  min_interval: 6h
  workers: 4
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "postgres://u:p@db:5432/carnivals", cfg.Database.DSN)
	assert.True(t, cfg.Sync.Enabled)
	assert.True(t, cfg.Sync.UseMock)
	assert.Equal(t, 6*time.Hour, cfg.Sync.MinInterval)
	assert.Equal(t, time.Hour, cfg.Sync.StaleRunTimeout)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, "mysideline-mock", cfg.Sync.SourceName())
	assert.Equal(t, "Masters", cfg.MySideline.Criteria)
	assert.Equal(t, 30, cfg.MySideline.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	writeConfig(t, "sync:\n  enabled: true\n")
	t.Setenv("DATABASE_DSN", "postgres://env/override")
	t.Setenv("MYSIDELINE_SYNC_ENABLED", "false")
	t.Setenv("USE_MOCK_MYSIDELINE", "true")
	t.Setenv("MYSIDELINE_PROXY", "http://proxy:3128")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/override", cfg.Database.DSN)
	assert.False(t, cfg.Sync.Enabled)
	assert.True(t, cfg.Sync.UseMock)
	assert.Equal(t, "http://proxy:3128", cfg.MySideline.Proxy)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Sync.MinInterval)
	assert.Equal(t, "mysideline", cfg.Sync.SourceName())
	assert.Equal(t, "Australia/Sydney", cfg.Sync.Timezone)
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"info":   logger.Info,
		"":       logger.Warn,
		"bogus":  logger.Warn,
	}
	for in, want := range cases {
		d := DatabaseConfig{LogLevel: in}
		assert.Equal(t, want, d.GormLogLevel(), in)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
