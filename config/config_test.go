package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg := loadFromYAML(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Membership.Strict)
	assert.Equal(t, "sha256", cfg.Password.Scheme)
}

func TestLoadFromYAML_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9999\"\nllm:\n  timeout: 5s\n"), 0o644))

	cfg := loadFromYAML(path)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
}

func TestOverrideWithEnvVars(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/study")
	t.Setenv("STORAGE_BACKEND", "sql")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("MEMBERSHIP_STRICT", "false")
	t.Setenv("LLM_TIMEOUT", "10s")

	cfg := getDefaultConfig()
	overrideWithEnvVars(cfg)

	assert.Equal(t, "/tmp/study", cfg.Storage.DataDir)
	assert.Equal(t, "sql", cfg.Storage.Backend)
	assert.True(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Membership.Strict)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}
