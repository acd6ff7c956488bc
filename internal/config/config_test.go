package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/agrovoo/internal/splash"
)

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	baseDir := t.TempDir()
	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.App.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.App.Version)
	}
	if !c.SplashEnabled() {
		t.Fatalf("splash must be enabled by default")
	}
	if c.App.Splash.Timings != splash.DefaultTimings() {
		t.Fatalf("expected default timings, got %+v", c.App.Splash.Timings)
	}
	if want := filepath.Join(c.AppDir, "state", "agrovoo.db"); c.DatabasePath() != want {
		t.Fatalf("expected database at %s, got %s", want, c.DatabasePath())
	}
}

func TestInitAppDirWritesParsableDefaults(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitAppDir(baseDir); err != nil {
		t.Fatalf("InitAppDir: %v", err)
	}
	for _, dir := range []string{"logs", "state"} {
		if _, err := os.Stat(filepath.Join(baseDir, AppDir, dir)); err != nil {
			t.Fatalf("expected %s dir: %v", dir, err)
		}
	}
	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if c.App.Splash.Timings != splash.DefaultTimings() {
		t.Fatalf("default file should decode to default timings, got %+v", c.App.Splash.Timings)
	}
	if c.App.Auth.LockoutWindow != 15*time.Minute {
		t.Fatalf("unexpected lockout window %v", c.App.Auth.LockoutWindow)
	}
}

func TestLoadConfigParsesYaml(t *testing.T) {
	baseDir := t.TempDir()
	appDir := filepath.Join(baseDir, AppDir)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
splash:
  enabled: false
  plants: 10
  timings:
    drone_delay: 2s
    progress_step: 2.5
auth:
  database: /var/lib/agrovoo/accounts.db
  max_failed_attempts: 3
`)
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.SplashEnabled() {
		t.Fatalf("expected splash disabled")
	}
	if c.App.Splash.Plants != 10 {
		t.Fatalf("expected 10 plants, got %d", c.App.Splash.Plants)
	}
	tm := c.App.Splash.Timings
	if tm.DroneDelay != 2*time.Second || tm.ProgressStep != 2.5 {
		t.Fatalf("overrides not applied: %+v", tm)
	}
	if tm.GroundDelay != splash.DefaultTimings().GroundDelay {
		t.Fatalf("omitted timings must keep defaults, got %v", tm.GroundDelay)
	}
	if c.DatabasePath() != "/var/lib/agrovoo/accounts.db" {
		t.Fatalf("absolute database path should be kept, got %s", c.DatabasePath())
	}
	if c.App.Auth.MaxFailedAttempts != 3 || c.App.Auth.MinPasswordLength != 6 {
		t.Fatalf("unexpected auth config %+v", c.App.Auth)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	baseDir := t.TempDir()
	appDir := filepath.Join(baseDir, AppDir)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
splash:
  timings:
    drone_tick: 0s
`)
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(baseDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestSetSplashEnabledPersists(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitAppDir(baseDir); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetSplashEnabled(false); err != nil {
		t.Fatalf("SetSplashEnabled: %v", err)
	}
	reloaded, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SplashEnabled() {
		t.Fatalf("expected persisted splash toggle")
	}
	if reloaded.App.Splash.Timings != c.App.Splash.Timings {
		t.Fatalf("timings changed across save: %+v vs %+v", reloaded.App.Splash.Timings, c.App.Splash.Timings)
	}
}
