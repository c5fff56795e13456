package rules

import (
	"testing"

	"github.com/axeldev/keyzen/internal/engine"
)

func TestComboParsesModifiersAndKey(t *testing.T) {
	b := New()
	c := b.Combo("Control-Shift-a")
	if c.Key.String() != "A" {
		t.Fatalf("expected key A, got %s", c.Key)
	}
	if len(c.Mods) != 2 {
		t.Fatalf("expected 2 modifiers, got %d: %v", len(c.Mods), c.Mods)
	}
}

func TestComboShortAliases(t *testing.T) {
	b := New()
	c := b.Combo("C-a")
	if c.Key.String() != "A" || len(c.Mods) != 1 || c.Mods[0] != engine.Control {
		t.Fatalf("unexpected combo: %+v", c)
	}
}

func TestComboUnknownKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown key")
		}
	}()
	New().Combo("C-nonexistentkey")
}

func TestAddModifierUsableInCombo(t *testing.T) {
	b := New()
	b.AddModifier("HYPER", []string{"Hyper"}, engine.Key(194)) // F24
	c := b.Combo("Hyper-a")
	if len(c.Mods) != 1 || c.Mods[0].String() != "HYPER" {
		t.Fatalf("expected HYPER modifier in combo, got %+v", c.Mods)
	}
}

func TestBuildInsertsDefaultModmapWhenNoneGiven(t *testing.T) {
	cfg, err := New().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Modmaps) != 1 || !cfg.Modmaps[0].Condition.IsAlways() {
		t.Fatalf("expected a single default modmap, got %+v", cfg.Modmaps)
	}
	if len(cfg.MultiModmaps) != 1 || !cfg.MultiModmaps[0].Condition.IsAlways() {
		t.Fatalf("expected a single default multi-modmap, got %+v", cfg.MultiModmaps)
	}
}

func TestBuildRejectsMultipleDefaultModmaps(t *testing.T) {
	b := New()
	b.Modmap("first", map[engine.Key]engine.Key{}, engine.Always)
	b.Modmap("second", map[engine.Key]engine.Key{}, engine.Always)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for two unconditional modmaps")
	}
}

func TestBuildKeepsSingleConditionalModmapPlusDefault(t *testing.T) {
	b := New()
	b.Modmap("emacs-mode", map[engine.Key]engine.Key{}, WmClassMatch("Emacs"))
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Modmaps) != 2 {
		t.Fatalf("expected default + conditional modmap, got %d", len(cfg.Modmaps))
	}
}

func TestWmClassMatchAndNegation(t *testing.T) {
	kc := engine.FromCache("kbd", engine.WindowInfo{WMClass: "Emacs"})
	if !WmClassMatch("Emacs").Eval(kc) {
		t.Fatal("expected WmClassMatch to match")
	}
	if NotWmClassMatch("Emacs").Eval(kc) {
		t.Fatal("expected NotWmClassMatch to not match")
	}
}

func TestThrottleDelaysClamp(t *testing.T) {
	b := New()
	b.ThrottleDelays(-10, 999)
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreDelay != 0 {
		t.Fatalf("expected pre-delay clamped to 0, got %v", cfg.PreDelay)
	}
	if cfg.PostDelay.Milliseconds() != 150 {
		t.Fatalf("expected post-delay clamped to 150ms, got %v", cfg.PostDelay)
	}
}
