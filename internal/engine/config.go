package engine

import "time"

// Config is the compiled rule snapshot the engine operates on: every
// modmap/multi-modmap/keymap the rules DSL (internal/rules) built, plus
// the timing and policy knobs spec.md's output synthesizer and pipeline
// need. It is immutable once handed to NewEngine — "configuration as
// user-supplied code" compiles down to exactly this value.
type Config struct {
	Modmaps      []*Modmap
	MultiModmaps []*MultiModmap
	Keymaps      []*Keymap // top-level keymaps, most specific first

	MultiPurposeTimeout time.Duration
	SuspendTimeout       time.Duration
	PreDelay             time.Duration
	PostDelay            time.Duration

	DumpKey  Key
	EjectKey Key

	IgnoreRepeats bool
	UseRepeatCache bool

	DevicesOnly  []string
	DevicesAvoid []string
}

// DefaultConfig mirrors xwaykeyz's config_api.py defaults: 1s multipurpose
// resolution, 500ms suspend timeout, no throttle beyond the engine's own
// floor, F15/F16 reserved for diagnostics, repeat passthrough and the
// repeat cache both on.
func DefaultConfig() *Config {
	return &Config{
		MultiPurposeTimeout: time.Second,
		SuspendTimeout:      500 * time.Millisecond,
		PreDelay:            0,
		PostDelay:           0,
		DumpKey:             KeyDumpDiagnostics,
		EjectKey:            KeyEmergencyEject,
		IgnoreRepeats:       true,
		UseRepeatCache:      true,
	}
}

// activeModmap returns the first modmap (in declaration order) whose
// condition currently holds, or nil. spec.md and config_api.py both
// require exactly one unconditional modmap/multi-modmap in a valid
// configuration; callers validate that at build time (internal/rules).
func activeModmap(modmaps []*Modmap, kc *KeyContext) *Modmap {
	for _, m := range modmaps {
		if m.Condition.Eval(kc) {
			return m
		}
	}
	return nil
}

func activeMultiModmap(modmaps []*MultiModmap, kc *KeyContext) *MultiModmap {
	for _, m := range modmaps {
		if m.Condition.Eval(kc) {
			return m
		}
	}
	return nil
}
