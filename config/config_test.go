package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Defaults().Build()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 200, cfg.Catalog.Size)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "./wal/journal", cfg.Journal.Dir)
	assert.Equal(t, time.Second, cfg.Scheduler.Resolution)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
}

func TestLoad_YamlAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
catalog:
  size: 50
  seed: 7
storage:
  backend: Redis
  redis_addr: "cache:6379"
scheduler:
  resolution: 250ms
log:
  level: debug
`), 0o644))

	t.Setenv("COINBOARD_REDIS_ADDR", "env-cache:6379")

	cfg, err := Load(Flags{ConfigPath: path, Addr: ":9100"})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, 50, cfg.Catalog.Size)
	assert.Equal(t, uint64(7), cfg.Catalog.Seed)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "env-cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Scheduler.Resolution)
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
	// untouched keys keep defaults
	assert.Equal(t, "./wal/journal", cfg.Journal.Dir)
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ConfigTmp)
	}{
		{"empty addr", func(c *ConfigTmp) { c.HTTP.Addr = " " }},
		{"zero catalog", func(c *ConfigTmp) { c.Catalog.Size = 0 }},
		{"unknown backend", func(c *ConfigTmp) { c.Storage.Backend = "postgres" }},
		{"redis without addr", func(c *ConfigTmp) { c.Storage.Backend = StorageRedis; c.Storage.RedisAddr = "" }},
		{"bad resolution", func(c *ConfigTmp) { c.Scheduler.Resolution = "soon" }},
		{"negative resolution", func(c *ConfigTmp) { c.Scheduler.Resolution = "-1s" }},
		{"bad level", func(c *ConfigTmp) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Defaults()
			tt.mutate(&raw)
			_, err := raw.Build()
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"COINBOARD_ADDR":           ":7000",
		"COINBOARD_REDIS_PASSWORD": "secret",
		"COINBOARD_LOG_LEVEL":      "warn",
		"COINBOARD_STORAGE":        "redis",
		"COINBOARD_CATALOG_SEED":   "42",
	}
	raw := Defaults()
	applyEnv(&raw, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, ":7000", raw.HTTP.Addr)
	assert.Equal(t, "secret", raw.Storage.RedisPassword)
	assert.Equal(t, "warn", raw.Log.Level)
	assert.Equal(t, "redis", raw.Storage.Backend)
	assert.Equal(t, uint64(42), raw.Catalog.Seed)
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--config", "c.yaml", "--setup", "--addr", ":1"})
	require.NoError(t, err)
	assert.Equal(t, Flags{ConfigPath: "c.yaml", Setup: true, Addr: ":1"}, f)

	_, err = ParseFlags([]string{"--nope"})
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), GeneratedPath)
	raw := Defaults()
	raw.Catalog.Size = 77
	require.NoError(t, raw.Write(path))

	cfg, err := Load(Flags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Catalog.Size)
}
