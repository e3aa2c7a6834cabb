package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"canvasboard/internal/domain"
)

// Config is the on-disk configuration.
type Config struct {
	DataDir          string        `toml:"data_dir"`
	SnapshotPath     string        `toml:"snapshot_path"`
	AutosaveInterval time.Duration `toml:"autosave_interval"`
	LogLevel         string        `toml:"log_level"`

	Store   domain.StoreConfig `toml:"store"`
	Backup  BackupConfig       `toml:"backup"`
	Metrics MetricsConfig      `toml:"metrics"`
}

// BackupConfig selects a secondary store written on a cron schedule.
type BackupConfig struct {
	Schedule string `toml:"schedule"`
	domain.StoreConfig
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		DataDir:          dataDir,
		SnapshotPath:     filepath.Join(dataDir, "workspace.json"),
		AutosaveInterval: 5 * time.Second,
		LogLevel:         "info",
		Store:            domain.StoreConfig{Driver: domain.StoreDriverFile},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/canvasboard/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "canvasboard", "config.toml")
}

// Load reads path (DefaultPath when empty) on top of the defaults, then
// applies CANVASBOARD_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			slog.Warn("config: unknown keys ignored", "path", path, "keys", fmt.Sprint(undec))
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("CANVASBOARD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("CANVASBOARD_SNAPSHOT"); v != "" {
		c.SnapshotPath = v
	}
	if v := getenv("CANVASBOARD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("CANVASBOARD_STORE_DRIVER"); v != "" {
		c.Store.Driver = domain.StoreDriver(v)
	}
	if v := getenv("CANVASBOARD_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := getenv("CANVASBOARD_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

func (c *Config) normalize() {
	c.DataDir = expandHome(c.DataDir)
	c.SnapshotPath = expandHome(c.SnapshotPath)
	if c.Store.Driver == "" {
		c.Store.Driver = domain.StoreDriverFile
	}
	if c.Store.DSN == "" {
		switch c.Store.Driver {
		case domain.StoreDriverFile:
			c.Store.DSN = c.SnapshotPath
		case domain.StoreDriverSQLite:
			c.Store.DSN = filepath.Join(c.DataDir, "workspace.db")
		}
	}
	if c.Store.Driver == domain.StoreDriverFile || c.Store.Driver == domain.StoreDriverSQLite {
		c.Store.DSN = expandHome(c.Store.DSN)
	}
	if c.Backup.Driver == domain.StoreDriverSQLite || c.Backup.Driver == domain.StoreDriverFile {
		c.Backup.DSN = expandHome(c.Backup.DSN)
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave_interval must not be negative: %s", c.AutosaveInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Backup.Schedule != "" && c.Backup.Driver == "" {
		return fmt.Errorf("backup.schedule set without backup.driver")
	}
	return nil
}

// WatchesFile reports whether the primary store is a plain file that can
// be edited externally and reloaded.
func (c *Config) WatchesFile() bool {
	return c.Store.Driver == domain.StoreDriverFile
}

// ParseLevel maps a log level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "canvasboard")
	}
	return expandHome("~/.local/share/canvasboard")
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
