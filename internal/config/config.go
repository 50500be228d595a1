package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/gomvi/lifecycle"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	State     StateConfig     `mapstructure:"state"`
	Counter   CounterConfig   `mapstructure:"counter"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Log       LogConfig       `mapstructure:"log"`
	UI        UIConfig        `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings for persisted view state.
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	Migrations string `mapstructure:"migrations"`
}

// StateConfig tunes shared view states.
type StateConfig struct {
	Backend     string        `mapstructure:"backend"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
	ResetOnStop bool          `mapstructure:"reset_on_stop"`
}

type CounterConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LifecycleConfig holds the minimum phases as names ("started", "resumed").
type LifecycleConfig struct {
	EffectsMinPhase string `mapstructure:"effects_min_phase"`
	StateMinPhase   string `mapstructure:"state_min_phase"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	KeymapFile string `mapstructure:"keymap_file"`
}

// Saved state backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendNone   = "none"
)

// EnvPrefix prefixes every environment override, e.g. GOMVI_LOG_LEVEL.
const EnvPrefix = "GOMVI"

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "gomvi")
}

func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "gomvi")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "gomvi.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("state.backend", BackendSQLite)
	v.SetDefault("state.stop_timeout", 5*time.Second)
	v.SetDefault("state.reset_on_stop", false)
	v.SetDefault("counter.interval", time.Second)
	v.SetDefault("lifecycle.effects_min_phase", "resumed")
	v.SetDefault("lifecycle.state_min_phase", "started")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir(), "gomvi.log"))
	v.SetDefault("ui.keymap_file", filepath.Join(configDir(), "keys.toml"))
}

// Load reads configuration from the default location and env. Env var
// overrides use prefix GOMVI_; GOMVI_CONFIG names an explicit config file.
func Load() (Config, error) {
	return LoadFile(os.Getenv(EnvPrefix + "_CONFIG"))
}

// LoadFile reads configuration from path, or from the default location when
// path is empty. A missing default file is not an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Phases parses the configured minimum phases.
func (c LifecycleConfig) Phases() (effects, state lifecycle.Phase, err error) {
	if effects, err = lifecycle.ParsePhase(c.EffectsMinPhase); err != nil {
		return 0, 0, fmt.Errorf("lifecycle.effects_min_phase: %w", err)
	}
	if state, err = lifecycle.ParsePhase(c.StateMinPhase); err != nil {
		return 0, 0, fmt.Errorf("lifecycle.state_min_phase: %w", err)
	}
	return effects, state, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.State.Backend {
	case BackendSQLite, BackendFile, BackendNone:
	default:
		return fmt.Errorf("state.backend: unknown backend %q", c.State.Backend)
	}
	if c.Counter.Interval <= 0 {
		return fmt.Errorf("counter.interval: must be positive, got %s", c.Counter.Interval)
	}
	if c.State.StopTimeout < 0 {
		return fmt.Errorf("state.stop_timeout: must not be negative, got %s", c.State.StopTimeout)
	}
	return nil
}

// StateDir is where the file backend keeps state.json.
func StateDir() string { return dataDir() }

// SlogLevel parses the configured log level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Save writes cfg to path (or the default location), creating the config
// directory if needed.
func Save(cfg Config, path string) error {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = filepath.Join(configDir(), "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("state.backend", cfg.State.Backend)
	v.Set("state.stop_timeout", cfg.State.StopTimeout.String())
	v.Set("state.reset_on_stop", cfg.State.ResetOnStop)
	v.Set("counter.interval", cfg.Counter.Interval.String())
	v.Set("lifecycle.effects_min_phase", cfg.Lifecycle.EffectsMinPhase)
	v.Set("lifecycle.state_min_phase", cfg.Lifecycle.StateMinPhase)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.keymap_file", cfg.UI.KeymapFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
