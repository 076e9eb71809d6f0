package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "LAUNCHDEMO"

	defaultInstallDir = ".LauncherDemo"
	defaultTimeout    = 30 * time.Second
	defaultLogLevel   = LogLevelInfo
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// DefaultBaseURL is used when no base_url is configured. Builds may override it.
var DefaultBaseURL = "https://practical-hypatia.185-229-202-10.plesk.page"

// Config represents a configuration parse
type Config struct {
	BaseURL     string
	InstallDir  string
	Timeout     time.Duration
	RateLimit   int64
	SelfUpdate  bool
	LogLevel    string
	Version     string
	GameExe     string
	GameArgs    []string
	IsAutoPatch bool
	IsAutoPlay  bool

	baseName string
	v        *viper.Viper
}

// New loads <baseName>.yml, creating it with defaults when it does not exist yet.
// Values from a .env file and LAUNCHDEMO_* environment variables override the file.
func New(ctx context.Context, baseName string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables only")
	}

	path := baseName + ".yml"
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		baseName: baseName,
		v:        v,
	}

	fi, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config info: %w", err)
		}
		err = writeDefaults(path)
		if err != nil {
			return nil, fmt.Errorf("save config: %w", err)
		}
		cfg.load()
		return cfg, nil
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s.yml is a directory, should be a file", baseName)
	}

	err = v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("decode %s.yml: %w", baseName, err)
	}
	cfg.load()

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("patcher.base_url", DefaultBaseURL)
	v.SetDefault("patcher.install_dir", defaultInstallPath())
	v.SetDefault("patcher.timeout", defaultTimeout.String())
	v.SetDefault("patcher.rate_limit", 0)
	v.SetDefault("patcher.self_update", false)
	v.SetDefault("patcher.log_level", defaultLogLevel)
	v.SetDefault("patcher.version", "")

	v.SetDefault("game.exe", "")
	v.SetDefault("game.args", "")
	v.SetDefault("game.auto_patch", true)
	v.SetDefault("game.auto_play", false)
}

// fileViper reads and writes path without defaults or environment overrides.
func fileViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

// writeDefaults creates path holding only default values.
func writeDefaults(path string) error {
	v := fileViper(path)
	setDefaults(v)
	err := v.WriteConfigAs(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// defaultInstallPath is the per-user application data folder of the game.
func defaultInstallPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultInstallDir
	}
	return filepath.Join(dir, defaultInstallDir)
}

func (c *Config) load() {
	v := c.v
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(v.GetString("patcher.base_url")), "/")
	c.InstallDir = strings.TrimSpace(v.GetString("patcher.install_dir"))
	c.Timeout = v.GetDuration("patcher.timeout")
	c.RateLimit = v.GetInt64("patcher.rate_limit")
	c.SelfUpdate = v.GetBool("patcher.self_update")
	c.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("patcher.log_level")))
	c.Version = strings.TrimSpace(v.GetString("patcher.version"))
	c.GameExe = strings.TrimSpace(v.GetString("game.exe"))
	c.GameArgs = strings.Fields(v.GetString("game.args"))
	c.IsAutoPatch = v.GetBool("game.auto_patch")
	c.IsAutoPlay = v.GetBool("game.auto_play")
}

// BaseName returns the path prefix used for the config, log and report files.
func (c *Config) BaseName() string {
	return c.baseName
}

// Verify returns an error if configuration appears off
func (c *Config) Verify() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must be http or https", c.BaseURL)
	}
	if c.InstallDir == "" {
		return fmt.Errorf("install_dir must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit %d", c.RateLimit)
	}
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Save saves the config
func (c *Config) Save() error {
	path := c.baseName + ".yml"
	fi, err := os.Stat(path)
	if err == nil && fi.IsDir() {
		return fmt.Errorf("dirCheck %s.yml: is a directory", c.baseName)
	}

	v := c.v
	v.Set("patcher.base_url", c.BaseURL)
	v.Set("patcher.install_dir", c.InstallDir)
	v.Set("patcher.timeout", c.Timeout.String())
	v.Set("patcher.rate_limit", c.RateLimit)
	v.Set("patcher.self_update", c.SelfUpdate)
	v.Set("patcher.log_level", c.LogLevel)
	v.Set("patcher.version", c.Version)
	v.Set("game.exe", c.GameExe)
	v.Set("game.args", strings.Join(c.GameArgs, " "))
	v.Set("game.auto_patch", c.IsAutoPatch)
	v.Set("game.auto_play", c.IsAutoPlay)

	err = v.WriteConfigAs(path)
	if err != nil {
		return fmt.Errorf("write %s.yml: %w", c.baseName, err)
	}
	return nil
}

// SaveVersion stores version as patcher.version and leaves every other key in
// the file as it was, so overrides applied to c are never persisted.
func (c *Config) SaveVersion(version string) error {
	path := c.baseName + ".yml"
	v := fileViper(path)
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read %s.yml: %w", c.baseName, err)
	}
	v.Set("patcher.version", version)
	err = v.WriteConfigAs(path)
	if err != nil {
		return fmt.Errorf("write %s.yml: %w", c.baseName, err)
	}
	c.Version = version
	return nil
}
