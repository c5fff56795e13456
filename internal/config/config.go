// Package config loads and saves keyzen's ambient settings: device
// selection, timeouts, throttles, diagnostic keys, and TUI appearance.
// It does not hold the remapping rules themselves — see internal/rules
// for the modmap/keymap DSL, which is supplied as compiled Go, not TOML.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DeviceConfig controls which input devices keyzen grabs.
type DeviceConfig struct {
	Only  []string `toml:"only"`  // if non-empty, grab only these device names/paths
	Avoid []string `toml:"avoid"` // never grab these device names/paths
	Watch bool     `toml:"watch"` // watch /dev/input for hotplug changes
}

// TimeoutConfig holds the suspend-timer and multipurpose-resolution timeouts,
// in milliseconds.
type TimeoutConfig struct {
	MultiPurposeMs int `toml:"multi_purpose_ms"`
	SuspendMs      int `toml:"suspend_ms"`
}

// ThrottleConfig holds the pre/post key-action delays, in milliseconds.
// A hard floor is enforced by internal/engine regardless of what is
// configured here (see spec.md's output-synthesizer throttle invariant).
type ThrottleConfig struct {
	PreMs  int `toml:"pre_ms"`
	PostMs int `toml:"post_ms"`
}

// DiagnosticConfig names the two reserved keys that can never be remapped.
type DiagnosticConfig struct {
	DumpKey   string `toml:"dump_key"`
	EjectKey  string `toml:"eject_key"`
}

// EnvironConfig describes the desktop session keyzen is running under, used
// to pick a window-context provider.
type EnvironConfig struct {
	SessionType string `toml:"session_type"` // "x11" or "wayland"
	Compositor  string `toml:"compositor"`   // "sway", "hyprland", "gnome", "kde", ""
}

// RepeatConfig controls the performance-only repeat-passthrough shortcut
// and repeat-output cache.
type RepeatConfig struct {
	IgnoreRepeats bool `toml:"ignore_repeats"`
	CacheEnabled  bool `toml:"cache_enabled"`
}

// TUIConfig holds diagnostics-dashboard appearance settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
}

// Config is the top-level ambient configuration.
type Config struct {
	Device     DeviceConfig     `toml:"device"`
	Timeout    TimeoutConfig    `toml:"timeout"`
	Throttle   ThrottleConfig   `toml:"throttle"`
	Diagnostic DiagnosticConfig `toml:"diagnostic"`
	Environ    EnvironConfig    `toml:"environ"`
	Repeat     RepeatConfig     `toml:"repeat"`
	TUI        TUIConfig        `toml:"tui"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Watch: true,
		},
		Timeout: TimeoutConfig{
			MultiPurposeMs: 1000,
			SuspendMs:      500,
		},
		Throttle: ThrottleConfig{
			PreMs:  0,
			PostMs: 0,
		},
		Diagnostic: DiagnosticConfig{
			DumpKey:  "KEY_F15",
			EjectKey: "KEY_F16",
		},
		Environ: EnvironConfig{
			SessionType: "",
			Compositor:  "",
		},
		Repeat: RepeatConfig{
			IgnoreRepeats: true,
			CacheEnabled:  true,
		},
		TUI: TUIConfig{
			Theme: "synthwave",
		},
	}
}

// DefaultPath returns the default config file path (~/.config/keyzen/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keyzen", "config.toml")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keyzen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
