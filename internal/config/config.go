package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/loykin/sidekick/internal/supervisor"
)

// DisableAutostartEnv is the opt-out flag: when set truthy, the autostart
// flow never runs even on production builds.
const DisableAutostartEnv = "SIDEKICK_DISABLE_AUTOSTART"

// VariantProduction is the build variant under which autostart is gated on.
const VariantProduction = "production"

// ServerConfig describes the local command-surface listener.
type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// StoreConfig selects the optional transition-history store.
type StoreConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// Config is the top-level TOML structure.
type Config struct {
	DataDir string          `toml:"data_dir" mapstructure:"data_dir"`
	Server  ServerConfig    `toml:"server" mapstructure:"server"`
	Backend supervisor.Spec `toml:"backend" mapstructure:"backend"`
	Store   StoreConfig     `toml:"store" mapstructure:"store"`
}

// Default returns the built-in configuration rooted at the per-user
// application-data directory.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Server: ServerConfig{
			Listen:   "127.0.0.1:8127",
			BasePath: "/api",
		},
		Backend: supervisor.Spec{
			Name:     "backend",
			TaskName: "Sidekick_Backend",
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		cfg.finish()
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.finish()
	return cfg, nil
}

// finish derives dependent paths once the data dir is settled.
func (c *Config) finish() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Backend.Log.Dir == "" {
		c.Backend.Log.Dir = c.LogsDir()
	}
	c.Backend = c.Backend.WithDefaults()
}

// LogsDir is where all append-only logs and captured backend output live.
func (c *Config) LogsDir() string { return filepath.Join(c.DataDir, "logs") }

// AppLogPath is the general application log channel.
func (c *Config) AppLogPath() string { return filepath.Join(c.LogsDir(), "app.log") }

// AutostartLogPath is the autostart flow log channel.
func (c *Config) AutostartLogPath() string { return filepath.Join(c.LogsDir(), "autostart.log") }

// LockPath is the single-instance marker file.
func (c *Config) LockPath() string { return filepath.Join(c.DataDir, "runtime", "app.lock") }

// AutostartEnabled evaluates the gate once at process start: production
// build variant and the opt-out env flag not set.
func AutostartEnabled(buildVariant string) bool {
	if buildVariant != VariantProduction {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(DisableAutostartEnv))) {
	case "", "0", "false", "no":
		return true
	}
	return false
}

// defaultDataDir resolves the per-user application-data directory, falling
// back to the home directory when the OS config dir is unavailable.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sidekick")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sidekick"
	}
	return filepath.Join(home, ".sidekick")
}
