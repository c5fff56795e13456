// Package rules is the configuration DSL a keyzen rule file is written
// against: modmaps, multi-purpose modmaps, nested keymaps, conditionals,
// timeouts and throttle delays, all fed into internal/engine.Config.
// Grounded on original_source/src/xwaykeyz/config_api.py, which plays the
// same role for the Python engine it was distilled from — a thin builder
// surface a user's rule file calls into, compiled once at startup rather
// than interpreted per event.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/axeldev/keyzen/internal/engine"
)

// Builder accumulates modmaps/multi-modmaps/keymaps and policy settings,
// then compiles them into an engine.Config. Each rule file constructs
// exactly one Builder (cmd/keyzen wires the default one in rules.go).
type Builder struct {
	modmaps      []*engine.Modmap
	multiModmaps []*engine.MultiModmap
	keymaps      []*engine.Keymap

	multiPurposeTimeout time.Duration
	suspendTimeout      time.Duration
	preDelay            time.Duration
	postDelay           time.Duration

	dumpKey  engine.Key
	ejectKey engine.Key

	ignoreRepeats  bool
	useRepeatCache bool

	devicesOnly  []string
	devicesAvoid []string

	customMods map[string]engine.Modifier
}

// New returns a Builder seeded with the same defaults as
// engine.DefaultConfig: 1s multipurpose resolution, 500ms suspend
// timeout, F15/F16 diagnostics keys, repeat passthrough and cache on.
func New() *Builder {
	def := engine.DefaultConfig()
	return &Builder{
		multiPurposeTimeout: def.MultiPurposeTimeout,
		suspendTimeout:      def.SuspendTimeout,
		preDelay:            def.PreDelay,
		postDelay:           def.PostDelay,
		dumpKey:             def.DumpKey,
		ejectKey:            def.EjectKey,
		ignoreRepeats:       def.IgnoreRepeats,
		useRepeatCache:      def.UseRepeatCache,
		customMods:          map[string]engine.Modifier{},
	}
}

// Modmap registers a keycode-translation table, active only while cond
// holds (engine.Always for unconditional).
func (b *Builder) Modmap(name string, mappings map[engine.Key]engine.Key, cond engine.Predicate) *engine.Modmap {
	mm := engine.NewModmap(name, mappings, cond)
	b.modmaps = append(b.modmaps, mm)
	return mm
}

// MultiModmap registers a dual-role (tap/hold) key table.
func (b *Builder) MultiModmap(name string, mappings map[engine.Key]engine.MultiModmapEntry, cond engine.Predicate) *engine.MultiModmap {
	mmm := engine.NewMultiModmap(name, mappings, cond)
	b.multiModmaps = append(b.multiModmaps, mmm)
	return mmm
}

// Keymap registers an empty, named Keymap for the caller to Bind combos
// into, active only while cond holds. Unlike config_api.py's keymap(),
// there is no Cartesian-product expansion of generic modifiers here:
// Combo.Matches already resolves a generic combo modifier against
// whichever specific side is actually held (engine's modifierSatisfies),
// so pre-expanding L_X/R_X variants at build time would just duplicate
// what Lookup already does at dispatch time.
func (b *Builder) Keymap(name string, cond engine.Predicate) *engine.Keymap {
	km := engine.NewKeymap(name, cond)
	b.keymaps = append(b.keymaps, km)
	return km
}

// Timeouts sets the multipurpose-key resolution and suspend timeouts.
func (b *Builder) Timeouts(multipurpose, suspend time.Duration) {
	b.multiPurposeTimeout = multipurpose
	b.suspendTimeout = suspend
}

// ThrottleDelays sets the pre/post key-event pacing delays, clamped to
// [0ms, 150ms] exactly as config_api.py:throttle_delays does (the
// engine's own MinPreDelay/MinPostDelay floors apply on top of whatever
// is set here).
func (b *Builder) ThrottleDelays(preMs, postMs int) {
	b.preDelay = clampMs(preMs)
	b.postDelay = clampMs(postMs)
}

func clampMs(ms int) time.Duration {
	if ms < 0 {
		ms = 0
	}
	if ms > 150 {
		ms = 150
	}
	return time.Duration(ms) * time.Millisecond
}

// DumpDiagnosticsKey / EmergencyEjectKey override the default F15/F16
// reserved hotkeys.
func (b *Builder) DumpDiagnosticsKey(k engine.Key)  { b.dumpKey = k }
func (b *Builder) EmergencyEjectKey(k engine.Key)   { b.ejectKey = k }

// IgnoreRepeatingKeys toggles whether held-key REPEAT events skip rule
// evaluation and are forwarded to the output as-is (the default) or are
// processed through the full pipeline.
func (b *Builder) IgnoreRepeatingKeys(on bool) { b.ignoreRepeats = on }

// UseRepeatCache toggles the first-REPEAT memoization described in
// spec.md §4.9. Has no original_source equivalent; on by default.
func (b *Builder) UseRepeatCache(on bool) { b.useRepeatCache = on }

// DevicesOnly restricts grabbing to devices whose path or name equals one
// of these strings exactly.
func (b *Builder) DevicesOnly(names ...string) { b.devicesOnly = names }

// DevicesAvoid excludes devices whose path or name equals one of these
// strings exactly from grabbing.
func (b *Builder) DevicesAvoid(names ...string) { b.devicesAvoid = names }

// AddModifier defines a new named modifier bound to a single key, usable
// in this Builder's Combo() calls via any of its aliases. Grounded on
// config_api.py:add_modifier (e.g. a "HYPER" modifier bound to F24).
func (b *Builder) AddModifier(name string, aliases []string, key engine.Key) engine.Modifier {
	mod := engine.NewModifier(name, key)
	for _, alias := range aliases {
		b.customMods[strings.ToUpper(alias)] = mod
	}
	b.customMods[strings.ToUpper(name)] = mod
	return mod
}

// Combo parses a hyphen-separated expression like "Control-Shift-a" or
// "C-S-a" into an engine.Combo, resolving modifier aliases (built-in and
// any registered via AddModifier) against the leading segments and the
// trailing segment as the key name. Grounded on config_api.py:combo/C/K.
func (b *Builder) Combo(expr string) engine.Combo {
	parts := strings.Split(expr, "-")
	if len(parts) == 0 {
		panic(fmt.Sprintf("rules: empty combo expression %q", expr))
	}
	keyPart := parts[len(parts)-1]
	modParts := parts[:len(parts)-1]

	mods := make([]engine.Modifier, 0, len(modParts))
	seen := map[string]bool{}
	for _, mp := range modParts {
		alias := strings.ToUpper(mp)
		mod, ok := b.customMods[alias]
		if !ok {
			mod, ok = engine.ModifierFromAlias(alias)
		}
		if !ok {
			panic(fmt.Sprintf("rules: unknown modifier alias %q in combo %q", mp, expr))
		}
		if !seen[mod.String()] {
			seen[mod.String()] = true
			mods = append(mods, mod)
		}
	}

	key, ok := engine.KeyByName(strings.ToUpper(keyPart))
	if !ok {
		panic(fmt.Sprintf("rules: unknown key %q in combo %q", keyPart, expr))
	}
	return engine.NewCombo(key, mods...)
}

// K is a short alias for Combo, mirroring config_api.py's legacy `K`/`C`
// single-letter helper names.
func (b *Builder) K(expr string) engine.Combo { return b.Combo(expr) }

// WmClassMatch returns a predicate true while the focused window's class
// matches the given regular expression.
func WmClassMatch(expr string) engine.Predicate {
	rgx := regexp.MustCompile(expr)
	return engine.NewPredicate(fmt.Sprintf("wm_class ~= /%s/", expr), func(kc *engine.KeyContext) bool {
		return rgx.MatchString(kc.WMClass())
	})
}

// NotWmClassMatch is the negation of WmClassMatch.
func NotWmClassMatch(expr string) engine.Predicate {
	rgx := regexp.MustCompile(expr)
	return engine.NewPredicate(fmt.Sprintf("wm_class !~ /%s/", expr), func(kc *engine.KeyContext) bool {
		return !rgx.MatchString(kc.WMClass())
	})
}

// DeviceNameMatch returns a predicate true while the originating device's
// name matches the given regular expression, supplementing the old
// wm_class-only conditionals with the device_name dimension
// old_style_condition_to_fn's two-argument form exposed.
func DeviceNameMatch(expr string) engine.Predicate {
	rgx := regexp.MustCompile(expr)
	return engine.NewPredicate(fmt.Sprintf("device_name ~= /%s/", expr), func(kc *engine.KeyContext) bool {
		return rgx.MatchString(kc.DeviceName)
	})
}

// Build validates and compiles the accumulated rules into an
// engine.Config. A rule file may register at most one unconditional
// (default) Modmap and at most one unconditional MultiModmap; unlike
// config_api.py:get_configuration (which calls sys.exit(0) — a bug, since
// 0 signals success — on this same violation), Build reports it as an
// error so the caller can exit non-zero.
func (b *Builder) Build() (*engine.Config, error) {
	modmaps, err := partitionDefault(b.modmaps)
	if err != nil {
		return nil, fmt.Errorf("rules: modmaps: %w", err)
	}
	if len(modmaps) == 0 || !modmaps[0].Condition.IsAlways() {
		modmaps = append([]*engine.Modmap{engine.NewModmap("default", map[engine.Key]engine.Key{}, engine.Always)}, modmaps...)
	}

	multiModmaps, err := partitionDefaultMulti(b.multiModmaps)
	if err != nil {
		return nil, fmt.Errorf("rules: multi-modmaps: %w", err)
	}
	if len(multiModmaps) == 0 || !multiModmaps[0].Condition.IsAlways() {
		multiModmaps = append([]*engine.MultiModmap{engine.NewMultiModmap("default", map[engine.Key]engine.MultiModmapEntry{}, engine.Always)}, multiModmaps...)
	}

	return &engine.Config{
		Modmaps:             modmaps,
		MultiModmaps:        multiModmaps,
		Keymaps:             b.keymaps,
		MultiPurposeTimeout: b.multiPurposeTimeout,
		SuspendTimeout:      b.suspendTimeout,
		PreDelay:            b.preDelay,
		PostDelay:           b.postDelay,
		DumpKey:             b.dumpKey,
		EjectKey:            b.ejectKey,
		IgnoreRepeats:       b.ignoreRepeats,
		UseRepeatCache:      b.useRepeatCache,
		DevicesOnly:         b.devicesOnly,
		DevicesAvoid:        b.devicesAvoid,
	}, nil
}

func partitionDefault(all []*engine.Modmap) ([]*engine.Modmap, error) {
	var conditionals, defaults []*engine.Modmap
	for _, m := range all {
		if m.Condition.IsAlways() {
			defaults = append(defaults, m)
		} else {
			conditionals = append(conditionals, m)
		}
	}
	if len(defaults) > 1 {
		return nil, fmt.Errorf("only a single default (non-conditional) modmap is allowed, got %d", len(defaults))
	}
	return append(defaults, conditionals...), nil
}

func partitionDefaultMulti(all []*engine.MultiModmap) ([]*engine.MultiModmap, error) {
	var conditionals, defaults []*engine.MultiModmap
	for _, m := range all {
		if m.Condition.IsAlways() {
			defaults = append(defaults, m)
		} else {
			conditionals = append(conditionals, m)
		}
	}
	if len(defaults) > 1 {
		return nil, fmt.Errorf("only a single default (non-conditional) multi-modmap is allowed, got %d", len(defaults))
	}
	return append(defaults, conditionals...), nil
}
