// internal/config/config.go
//
// This package handles configuration and the .agrovoo directory structure.
// The directory is created next to where the app is launched (or under
// --dir) and holds the config file, logs and local state.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/agrovoo/internal/splash"
)

const (
	// AppDir is the name of the directory we create in the base directory
	AppDir = ".agrovoo"

	defaultDatabase = "state/agrovoo.db"
	maxPlants       = 100
)

const defaultConfigYAML = `# agrovoo configuration
version: 1

# Intro animation shown before the landing screen.
splash:
  enabled: true
  plants: 25
  timings:
    ground_delay: 200ms
    plants_delay: 1300ms
    drone_delay: 4s
    drone_tick: 25ms
    drone_step: 0.01
    settle_delay: 500ms
    progress_tick: 50ms
    progress_step: 1
    hold_delay: 1500ms
    complete_delay: 1500ms

# Local account backend. The database path is relative to .agrovoo/.
auth:
  database: state/agrovoo.db
  min_password_length: 6
  max_failed_attempts: 5
  lockout_window: 15m
  request_timeout: 10s
`

// SplashConfig controls the intro animation.
type SplashConfig struct {
	Enabled bool           `yaml:"enabled"`
	Plants  int            `yaml:"plants"`
	Timings splash.Timings `yaml:"timings"`
}

// AuthConfig controls the local account backend.
type AuthConfig struct {
	Database          string        `yaml:"database"`
	MinPasswordLength int           `yaml:"min_password_length"`
	MaxFailedAttempts int           `yaml:"max_failed_attempts"`
	LockoutWindow     time.Duration `yaml:"lockout_window"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// AppConfig models .agrovoo/config.yaml.
type AppConfig struct {
	Version int          `yaml:"version"`
	Splash  SplashConfig `yaml:"splash"`
	Auth    AuthConfig   `yaml:"auth"`
}

// Config holds the runtime configuration.
type Config struct {
	// BaseDir is the directory the app was launched for
	BaseDir string

	// AppDir is BaseDir/.agrovoo
	AppDir string

	App AppConfig
}

// InitAppDir creates the .agrovoo directory structure in the given base
// directory.
//
// Structure created:
// .agrovoo/
// ├── config.yaml
// ├── logs/     <- zap log output
// └── state/    <- account database and preferences
func InitAppDir(baseDir string) error {
	appDir := filepath.Join(baseDir, AppDir)

	dirs := []string{
		filepath.Join(appDir, "logs"),
		filepath.Join(appDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureConfigFile(filepath.Join(appDir, "config.yaml"))
}

// NewConfig loads the configuration for baseDir. A missing config file
// yields the defaults.
func NewConfig(baseDir string) (*Config, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", baseDir, err)
	}
	cfg := &Config{
		BaseDir: abs,
		AppDir:  filepath.Join(abs, AppDir),
		App:     defaultAppConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.AppDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.AppDir, "state")
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.AppDir, "config.yaml")
}

// DatabasePath returns the absolute path of the account database.
func (c *Config) DatabasePath() string {
	return resolvePath(c.AppDir, c.App.Auth.Database)
}

// PrefsPath returns the path of the client preferences file.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.StateDir(), "prefs.yaml")
}

// SplashEnabled reports whether the intro animation should run.
func (c *Config) SplashEnabled() bool {
	return c.App.Splash.Enabled
}

// SetSplashEnabled toggles the intro animation and persists the choice.
func (c *Config) SetSplashEnabled(enabled bool) error {
	c.App.Splash.Enabled = enabled
	return c.save()
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	// Decode over the defaults so omitted keys keep their default values.
	parsed := defaultAppConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.App = parsed
	return nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Version: 1,
		Splash: SplashConfig{
			Enabled: true,
			Plants:  splash.DefaultPlantCount,
			Timings: splash.DefaultTimings(),
		},
		Auth: AuthConfig{
			Database:          defaultDatabase,
			MinPasswordLength: 6,
			MaxFailedAttempts: 5,
			LockoutWindow:     15 * time.Minute,
			RequestTimeout:    10 * time.Second,
		},
	}
}

func (ac *AppConfig) applyDefaults() {
	if ac.Version == 0 {
		ac.Version = 1
	}
	defaults := defaultAppConfig().Auth
	if ac.Auth.MinPasswordLength == 0 {
		ac.Auth.MinPasswordLength = defaults.MinPasswordLength
	}
	if ac.Auth.MaxFailedAttempts == 0 {
		ac.Auth.MaxFailedAttempts = defaults.MaxFailedAttempts
	}
	if ac.Auth.LockoutWindow == 0 {
		ac.Auth.LockoutWindow = defaults.LockoutWindow
	}
	if ac.Auth.RequestTimeout == 0 {
		ac.Auth.RequestTimeout = defaults.RequestTimeout
	}
}

func (ac *AppConfig) normalize() {
	ac.Auth.Database = strings.TrimSpace(ac.Auth.Database)
	if ac.Auth.Database == "" {
		ac.Auth.Database = defaultDatabase
	}
}

func (ac *AppConfig) validate() error {
	if ac.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if ac.Splash.Plants < 0 || ac.Splash.Plants > maxPlants {
		return fmt.Errorf("splash.plants must be between 0 and %d", maxPlants)
	}
	if err := ac.Splash.Timings.Validate(); err != nil {
		return fmt.Errorf("splash.timings: %w", err)
	}
	if ac.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.min_password_length must be >= 1")
	}
	if ac.Auth.MaxFailedAttempts < 1 {
		return fmt.Errorf("auth.max_failed_attempts must be >= 1")
	}
	if ac.Auth.LockoutWindow < 0 || ac.Auth.RequestTimeout < 0 {
		return fmt.Errorf("auth durations must not be negative")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

func (c *Config) save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.App.applyDefaults()
	c.App.normalize()
	if err := c.App.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.AppDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure app dir: %w", err)
	}
	data, err := yaml.Marshal(c.App)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}
