package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if !cfg.Device.Watch {
		t.Error("expected device watching enabled by default")
	}
	if cfg.Timeout.MultiPurposeMs != 1000 {
		t.Errorf("expected multi-purpose timeout 1000, got %d", cfg.Timeout.MultiPurposeMs)
	}
	if cfg.Timeout.SuspendMs != 500 {
		t.Errorf("expected suspend timeout 500, got %d", cfg.Timeout.SuspendMs)
	}
	if cfg.Diagnostic.DumpKey != "KEY_F15" {
		t.Errorf("expected dump key KEY_F15, got %s", cfg.Diagnostic.DumpKey)
	}
	if cfg.Diagnostic.EjectKey != "KEY_F16" {
		t.Errorf("expected eject key KEY_F16, got %s", cfg.Diagnostic.EjectKey)
	}
	if !cfg.Repeat.IgnoreRepeats {
		t.Error("expected repeat passthrough enabled by default")
	}
	if !cfg.Repeat.CacheEnabled {
		t.Error("expected repeat cache enabled by default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Timeout.SuspendMs != 500 {
		t.Errorf("expected default suspend timeout, got %d", cfg.Timeout.SuspendMs)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[device]
only = ["/dev/input/event3"]
watch = false

[timeout]
multi_purpose_ms = 250
suspend_ms = 750

[throttle]
pre_ms = 5
post_ms = 10

[diagnostic]
dump_key = "KEY_F13"
eject_key = "KEY_F14"

[environ]
session_type = "wayland"
compositor = "sway"

[repeat]
ignore_repeats = false
cache_enabled = false

[tui]
theme = "gruvbox"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Device.Only) != 1 || cfg.Device.Only[0] != "/dev/input/event3" {
		t.Errorf("expected device.only override, got %v", cfg.Device.Only)
	}
	if cfg.Device.Watch {
		t.Error("expected device watching disabled")
	}
	if cfg.Timeout.MultiPurposeMs != 250 {
		t.Errorf("expected 250, got %d", cfg.Timeout.MultiPurposeMs)
	}
	if cfg.Timeout.SuspendMs != 750 {
		t.Errorf("expected 750, got %d", cfg.Timeout.SuspendMs)
	}
	if cfg.Throttle.PreMs != 5 || cfg.Throttle.PostMs != 10 {
		t.Errorf("expected throttle 5/10, got %d/%d", cfg.Throttle.PreMs, cfg.Throttle.PostMs)
	}
	if cfg.Diagnostic.DumpKey != "KEY_F13" {
		t.Errorf("expected KEY_F13, got %s", cfg.Diagnostic.DumpKey)
	}
	if cfg.Environ.Compositor != "sway" {
		t.Errorf("expected sway, got %s", cfg.Environ.Compositor)
	}
	if cfg.Repeat.IgnoreRepeats {
		t.Error("expected repeat passthrough disabled")
	}
	if cfg.Repeat.CacheEnabled {
		t.Error("expected repeat cache disabled")
	}
	if cfg.TUI.Theme != "gruvbox" {
		t.Errorf("expected gruvbox, got %s", cfg.TUI.Theme)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.TUI.Theme = "everforest"
	cfg.Timeout.SuspendMs = 900

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if loaded.TUI.Theme != "everforest" {
		t.Errorf("expected theme everforest, got %s", loaded.TUI.Theme)
	}
	if loaded.Timeout.SuspendMs != 900 {
		t.Errorf("expected suspend 900, got %d", loaded.Timeout.SuspendMs)
	}
	if loaded.Timeout.MultiPurposeMs != 1000 {
		t.Errorf("expected default multi-purpose timeout preserved, got %d", loaded.Timeout.MultiPurposeMs)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[diagnostic]
dump_key = "KEY_F17"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Diagnostic.DumpKey != "KEY_F17" {
		t.Errorf("expected KEY_F17, got %s", cfg.Diagnostic.DumpKey)
	}
	// Non-overridden values should remain defaults.
	if cfg.Timeout.SuspendMs != 500 {
		t.Errorf("expected default suspend timeout, got %d", cfg.Timeout.SuspendMs)
	}
	if !cfg.Device.Watch {
		t.Error("expected default device watching preserved")
	}
}
