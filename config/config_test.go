package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesDefaults(t *testing.T) {
	baseName := filepath.Join(t.TempDir(), "launchdemo")

	cfg, err := New(context.Background(), baseName)
	require.NoError(t, err)

	assert.FileExists(t, baseName+".yml")
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.True(t, cfg.IsAutoPatch)
	assert.False(t, cfg.IsAutoPlay)
	assert.Equal(t, defaultInstallDir, filepath.Base(cfg.InstallDir))
	assert.NoError(t, cfg.Verify())
}

func TestSaveRoundTrip(t *testing.T) {
	baseName := filepath.Join(t.TempDir(), "launchdemo")

	cfg, err := New(context.Background(), baseName)
	require.NoError(t, err)

	cfg.BaseURL = "http://127.0.0.1:8080"
	cfg.InstallDir = filepath.Join(t.TempDir(), "game")
	cfg.Timeout = 5 * time.Second
	cfg.RateLimit = 65536
	cfg.GameExe = "game.exe"
	cfg.GameArgs = []string{"-windowed", "-skipintro"}
	cfg.IsAutoPlay = true
	require.NoError(t, cfg.Save())

	loaded, err := New(context.Background(), baseName)
	require.NoError(t, err)

	assert.Equal(t, cfg.BaseURL, loaded.BaseURL)
	assert.Equal(t, cfg.InstallDir, loaded.InstallDir)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
	assert.Equal(t, int64(65536), loaded.RateLimit)
	assert.Equal(t, "game.exe", loaded.GameExe)
	assert.Equal(t, []string{"-windowed", "-skipintro"}, loaded.GameArgs)
	assert.True(t, loaded.IsAutoPlay)
}

func TestEnvOverride(t *testing.T) {
	baseName := filepath.Join(t.TempDir(), "launchdemo")
	t.Setenv("LAUNCHDEMO_PATCHER_BASE_URL", "http://override.test/")
	t.Setenv("LAUNCHDEMO_PATCHER_LOG_LEVEL", "DEBUG")

	cfg, err := New(context.Background(), baseName)
	require.NoError(t, err)

	assert.Equal(t, "http://override.test", cfg.BaseURL)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)

	data, err := os.ReadFile(baseName + ".yml")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "override.test")
	assert.NotContains(t, string(data), "debug")
}

func TestSaveVersionKeepsFileValues(t *testing.T) {
	baseName := filepath.Join(t.TempDir(), "launchdemo")

	cfg, err := New(context.Background(), baseName)
	require.NoError(t, err)
	cfg.BaseURL = "http://configured.test"
	require.NoError(t, cfg.Save())

	t.Setenv("LAUNCHDEMO_PATCHER_LOG_LEVEL", "error")
	cfg, err = New(context.Background(), baseName)
	require.NoError(t, err)
	cfg.BaseURL = "http://flag.test"
	cfg.LogLevel = LogLevelDebug

	require.NoError(t, cfg.SaveVersion("42"))
	assert.Equal(t, "42", cfg.Version)

	data, err := os.ReadFile(baseName + ".yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://configured.test")
	assert.NotContains(t, string(data), "flag.test")
	assert.Contains(t, string(data), "log_level: info")
	assert.Contains(t, string(data), `version: "42"`)
}

func TestNewRejectsDirectory(t *testing.T) {
	baseName := filepath.Join(t.TempDir(), "launchdemo")
	require.NoError(t, os.Mkdir(baseName+".yml", 0o755))

	_, err := New(context.Background(), baseName)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:    "https://example.test",
			InstallDir: "game",
			Timeout:    time.Second,
			LogLevel:   LogLevelInfo,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.BaseURL = "ftp://example.test" }, wantErr: true},
		{name: "empty install dir", mutate: func(c *Config) { c.InstallDir = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Verify()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
